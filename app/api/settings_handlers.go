package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quill/app/database"
)

func (h *Handler) GetAPIKeyStatus(c *gin.Context) {
	value, ok, err := h.settings.GetSetting(c.Request.Context(), database.SettingOpenAIKey)
	if err != nil {
		respondError(c, "get_api_key", err)
		return
	}

	hasKey := ok && strings.TrimSpace(value) != ""
	message := "OpenAI API key is not configured"
	if hasKey {
		message = "OpenAI API key is configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"hasKey":  hasKey,
		"message": message,
	})
}

func (h *Handler) SetAPIKey(c *gin.Context) {
	var req apiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API key is required", "field": "apiKey"})
		return
	}

	if err := h.settings.SetSetting(c.Request.Context(), database.SettingOpenAIKey, key); err != nil {
		respondError(c, "set_api_key", err)
		return
	}

	slog.Info("OpenAI API key updated", "user_id", principalFrom(c).ID)

	c.JSON(http.StatusOK, gin.H{"message": "OpenAI API key saved"})
}
