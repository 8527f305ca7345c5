package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quill/app/database"
)

func (h *Handler) GetInteractions(c *gin.Context) {
	id, ok := parseID(c, "contentId")
	if !ok {
		return
	}

	summary, err := h.interactions.GetInteractions(c.Request.Context(), id, identityFrom(c).UserID())
	if err != nil {
		respondError(c, "get_interactions", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RecordInteraction never fails because of a bad token: a rejected identity
// records anonymously.
func (h *Handler) RecordInteraction(c *gin.Context) {
	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.interactions.RecordInteraction(c.Request.Context(), database.InteractionRequest{
		ContentID:   req.ContentID,
		Fingerprint: req.Fingerprint,
		Action:      req.Action,
		UserID:      identityFrom(c).UserID(),
		Comment:     req.Comment,
	})
	if err != nil {
		respondError(c, "record_interaction", err)
		return
	}

	status := http.StatusOK
	if result.Action == database.ActionComment {
		status = http.StatusCreated
	}

	c.JSON(status, result)
}
