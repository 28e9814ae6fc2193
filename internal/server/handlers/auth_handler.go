package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocks/internal/service/auth"
)

// Authenticator resolves credentials to a user code.
type Authenticator interface {
	Authenticate(username, password string) (string, error)
}

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	svc    Authenticator
	logger *zap.Logger
}

// NewAuthHandler constructs the login HTTP adapter.
func NewAuthHandler(svc Authenticator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Login exchanges a username and password, sent as a form or JSON, for a user code.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid login payload", zap.Error(err))
	}

	code, err := h.svc.Authenticate(req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthorized) {
			h.logger.Error("login failed", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"usercode": code})
}
