package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocks/internal/domain/models"
	"github.com/mamadbah2/stocks/internal/service/records"
)

// RecordService is the record store used by StockHandler.
type RecordService interface {
	List(ctx context.Context, code string) ([]models.StockRecord, error)
	Create(ctx context.Context, code string, fields map[string]any) (models.StockRecord, error)
	UpdateByUser(ctx context.Context, code string, patch map[string]any) ([]models.StockRecord, error)
	DeleteByUser(ctx context.Context, code string) (int, error)
}

// StockHandler exposes stock record CRUD keyed by the user_code path parameter.
type StockHandler struct {
	svc    RecordService
	logger *zap.Logger
}

// NewStockHandler constructs the stock HTTP adapter.
func NewStockHandler(svc RecordService, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, logger: logger}
}

// List returns every record of the user.
func (h *StockHandler) List(c *gin.Context) {
	code := c.Param("user_code")

	recs, err := h.svc.List(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": notFoundMessage(code),
				"data":    []models.StockRecord{},
			})
			return
		}
		h.fail(c, "list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(recs),
		"data":   recs,
	})
}

// Create stores one record for the user.
func (h *StockHandler) Create(c *gin.Context) {
	code := c.Param("user_code")

	fields, ok := h.bindObject(c)
	if !ok {
		return
	}

	rec, err := h.svc.Create(c.Request.Context(), code, fields)
	if err != nil {
		h.fail(c, "create", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Stock data created successfully",
		"data":    rec,
	})
}

// Update patches every record of the user.
func (h *StockHandler) Update(c *gin.Context) {
	code := c.Param("user_code")

	patch, ok := h.bindObject(c)
	if !ok {
		return
	}

	recs, err := h.svc.UpdateByUser(c.Request.Context(), code, patch)
	if err != nil {
		h.fail(c, "update", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Successfully updated %d records for user_code: %s", len(recs), code),
		"data":    recs,
	})
}

// Delete removes every record of the user.
func (h *StockHandler) Delete(c *gin.Context) {
	code := c.Param("user_code")

	removed, err := h.svc.DeleteByUser(c.Request.Context(), code)
	if err != nil {
		h.fail(c, "delete", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Successfully deleted %d records for user_code: %s", removed, code),
	})
}

// bindObject decodes the request body as a JSON object, keeping numbers exact.
func (h *StockHandler) bindObject(c *gin.Context) (map[string]any, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil || payload == nil {
		h.logger.Warn("invalid stock payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "request body must be a JSON object",
		})
		return nil, false
	}
	return payload, true
}

func (h *StockHandler) fail(c *gin.Context, op string, err error) {
	code := c.Param("user_code")

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": validationMessage(verr),
			"fields":  verr.Fields,
		})
	case errors.Is(err, records.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": notFoundMessage(code),
		})
	case errors.Is(err, records.ErrStorage):
		h.logger.Error("stock storage failure", zap.String("operation", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to write to stock table",
		})
	default:
		h.logger.Error("stock operation failed", zap.String("operation", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
	}
}

func notFoundMessage(code string) string {
	return fmt.Sprintf("No records found for user_code: %s", code)
}

func validationMessage(verr *models.ValidationError) string {
	if verr.IsMissing() {
		return fmt.Sprintf("Missing required fields: [%s]", strings.Join(verr.Fields, ", "))
	}
	return verr.Error()
}
