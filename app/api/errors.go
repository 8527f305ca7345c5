package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quill/app/database"
	"github.com/lysyi3m/quill/app/generate"
)

// respondError maps domain errors to HTTP responses. Anything unclassified is
// logged and reported without detail.
func respondError(c *gin.Context, operation string, err error) {
	var validationErr *database.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var providerErr *generate.ProviderError
	if errors.As(err, &providerErr) {
		status := http.StatusBadGateway
		if errors.Is(err, generate.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		slog.Warn("Generation provider error", "operation", operation, "provider", providerErr.Provider, "error", err)
		c.JSON(status, gin.H{
			"error":    providerErr.Message,
			"provider": providerErr.Provider,
		})
		return
	}

	switch {
	case errors.Is(err, generate.ErrUnknownProvider):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown AI provider", "field": "ai"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, database.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, database.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflictMessage(err)})
	default:
		slog.Error("Request failed", "operation", operation, "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}

// conflictMessage strips the sentinel prefix, the rest is written for callers.
func conflictMessage(err error) string {
	message, ok := strings.CutPrefix(err.Error(), database.ErrConflict.Error()+": ")
	if !ok || message == "" {
		return "Conflict"
	}
	return message
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
