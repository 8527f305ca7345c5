package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quill/app/auth"
	"github.com/lysyi3m/quill/app/database"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, "list_users", err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), principalFrom(c).ID)
	if err != nil {
		respondError(c, "get_current_user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "password"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), database.NewUser{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		respondError(c, "create_user", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// UpdateUser lets admins edit anyone. Other users may edit only themselves and
// never their role.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	principal := principalFrom(c)
	if !principal.IsAdmin() && principal.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if req.Role != nil && !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can change roles"})
		return
	}

	patch := database.UserPatch{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "password"})
			return
		}
		patch.PasswordHash = &hash
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, "update_user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, "delete_user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
