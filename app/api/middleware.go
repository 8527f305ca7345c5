package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lysyi3m/quill/app/auth"
)

const (
	requestIDKey    = "request_id"
	identityKey     = "identity"
	requestIDHeader = "X-Request-ID"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// identityMiddleware resolves the bearer token once per request. It never
// rejects; routes that need a principal use requireAuth.
func identityMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, auth.Resolve(verifier, c.GetHeader("Authorization")))
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(auth.Identity); ok {
			return identity
		}
	}
	return auth.Identity{State: auth.Anonymous}
}

func principalFrom(c *gin.Context) *auth.Principal {
	return identityFrom(c).Principal
}

// requireAuth rejects anonymous callers with 401, and callers whose token failed
// verification with 401 when expired and 403 otherwise.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := identityFrom(c)

		switch identity.State {
		case auth.Authenticated:
			c.Next()
		case auth.Rejected:
			if errors.Is(identity.Err, auth.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		}
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFrom(c)
		if principal == nil || !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
