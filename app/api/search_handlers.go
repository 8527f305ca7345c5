package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quill/app/search"
)

func (h *Handler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required", "field": "q"})
		return
	}

	generate := false
	if raw := c.Query("generate"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid generate flag", "field": "generate"})
			return
		}
		generate = parsed
	}

	result, err := h.searcher.Search(c.Request.Context(), search.Query{
		Term:     term,
		Generate: generate,
		Provider: c.Query("ai"),
	})
	if err != nil {
		respondError(c, "search", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
