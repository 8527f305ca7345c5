package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quill/app/database"
	"github.com/lysyi3m/quill/app/feed"
)

func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		content:      deps.Content,
		interactions: deps.Interactions,
		users:        deps.Users,
		settings:     deps.Settings,
		searcher:     deps.Searcher,
		tokens:       deps.Tokens,
		templates:    deps.Templates,
		generator:    deps.Generator,
		providers:    deps.Providers,
		cache:        deps.Cache,
		version:      deps.Version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if count, err := h.content.CountContent(c.Request.Context()); err == nil {
		health["content"] = count
	} else {
		health["status"] = "degraded"
		health["database_error"] = "unavailable"
	}

	health["providers"] = h.providers.Snapshot()

	if h.cache != nil {
		health["cache"] = h.cache.Health(c.Request.Context())
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetFeed(c *gin.Context) {
	items, err := h.content.ListContent(c.Request.Context(), database.ContentFilter{Status: database.StatusPublished})
	if err != nil {
		respondError(c, "list_feed_content", err)
		return
	}

	if len(items) > feed.DefaultFeedLimit {
		items = items[:feed.DefaultFeedLimit]
	}

	rss, err := h.generator.Run(items)
	if err != nil {
		respondError(c, "generate_feed", err)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates := h.templates.GetTemplates()
	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"total":     len(templates),
	})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param, "field": param})
		return 0, false
	}
	return id, true
}
