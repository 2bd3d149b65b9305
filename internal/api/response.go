// Package api exposes the journal over HTTP with gin.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/domain"
	"trading-journal/internal/lookup"
	"trading-journal/internal/metrics"
	"trading-journal/internal/storage"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Ok writes a 200 envelope.
func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{Code: 0, Message: "ok", Data: data, Meta: meta})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "created", Data: data})
}

// Error writes an error envelope and aborts the chain.
func Error(c *gin.Context, status int, msg string, meta map[string]any) {
	c.AbortWithStatusJSON(status, apiResponse{Code: status, Message: msg, Meta: meta})
}

// writeError maps engine and storage errors onto HTTP statuses.
// Unrecognized errors are logged and reported as 500 without detail.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, storage.ErrDuplicateKey):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidTradeRecord),
		errors.Is(err, benchmark.ErrUnknownPreset):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, metrics.ErrNoTrades),
		errors.Is(err, metrics.ErrInsufficientData),
		errors.Is(err, lookup.ErrNoPriceData):
		Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}
