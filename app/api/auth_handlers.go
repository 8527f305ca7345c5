package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quill/app/auth"
	"github.com/lysyi3m/quill/app/database"
)

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required")
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, "login", err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Error("Password check failed", "user_id", user.ID, "error", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	principal := auth.PrincipalFromUser(user)
	token, err := h.tokens.Issue(principal)
	if err != nil {
		respondError(c, "issue_token", err)
		return
	}

	slog.Info("User logged in", "user_id", user.ID, "role", user.Role)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  principal,
	})
}

func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Token is required")
		return
	}

	principal, err := h.tokens.Verify(req.Token)
	if errors.Is(err, auth.ErrTokenExpired) {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": "Token expired"})
		return
	}
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"valid": false, "error": "Invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  principal,
	})
}
