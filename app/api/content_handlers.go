package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quill/app/database"
)

func (h *Handler) ListContent(c *gin.Context) {
	filter := database.ContentFilter{
		Status:  database.Status(c.Query("status")),
		TagName: c.Query("tag"),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "field": "status"})
		return
	}

	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseInt(author, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid author", "field": "author"})
			return
		}
		filter.AuthorID = id
	}

	items, err := h.content.ListContent(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "list_content", err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.content.GetContent(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get_content", err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateContent(c *gin.Context) {
	var req createContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := h.templates.Validate(req.Template); err != nil {
		respondError(c, "create_content", err)
		return
	}

	if req.Status == "" {
		req.Status = database.StatusDraft
	}

	principal := principalFrom(c)
	item, err := h.content.CreateContent(c.Request.Context(), database.NewContent{
		AuthorID:      principal.ID,
		Title:         req.Title,
		Body:          req.Body,
		Status:        req.Status,
		Template:      req.Template,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
	})
	if err != nil {
		respondError(c, "create_content", err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if req.Template != nil {
		if err := h.templates.Validate(*req.Template); err != nil {
			respondError(c, "update_content", err)
			return
		}
	}

	item, err := h.content.UpdateContent(c.Request.Context(), id, principalFrom(c).Requester(), database.ContentPatch{
		Title:         req.Title,
		Body:          req.Body,
		Status:        req.Status,
		Template:      req.Template,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
	})
	if err != nil {
		respondError(c, "update_content", err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.content.DeleteContent(c.Request.Context(), id, principalFrom(c).Requester()); err != nil {
		respondError(c, "delete_content", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted"})
}
