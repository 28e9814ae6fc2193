package auth

import (
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocks/internal/domain/models"
)

// ErrUnauthorized indicates the username/password pair is not registered.
var ErrUnauthorized = errors.New("invalid username or password")

// Service is a read-only credential table built once at startup.
type Service struct {
	users  map[string]models.Credential
	logger *zap.Logger
}

// NewService copies creds into a lookup table keyed by username.
func NewService(creds []models.Credential, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	users := make(map[string]models.Credential, len(creds))
	for _, c := range creds {
		users[c.Username] = c
	}
	return &Service{users: users, logger: logger}
}

// Authenticate returns the user code registered for username when password matches exactly.
func (s *Service) Authenticate(username, password string) (string, error) {
	cred, ok := s.users[username]
	if !ok || subtle.ConstantTimeCompare([]byte(cred.Password), []byte(password)) != 1 {
		s.logger.Info("login rejected", zap.String("username", username))
		return "", ErrUnauthorized
	}

	s.logger.Debug("login accepted", zap.String("username", username), zap.String("user_code", cred.UserCode))
	return cred.UserCode, nil
}
