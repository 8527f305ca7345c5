package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

type ServerOptions struct {
	CORSOrigins     []string
	SearchRateLimit int // requests per minute per client IP
	Debug           bool
}

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, opts ServerOptions) *gin.Engine {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(requestIDMiddleware())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\" %s\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
				param.Keys[requestIDKey],
			)
		},
		SkipPaths: []string{"/health"},
	}))
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(identityMiddleware(handler.tokens))

	setupRoutes(r, handler, searchLimiter(opts.SearchRateLimit))

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}

	return config
}

// searchLimiter throttles search, which may call a paid or slow provider.
func searchLimiter(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	rate := limiter.Rate{Period: time.Minute, Limit: int64(perMinute)}
	middleware := mgin.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			slog.Warn("Search rate limit reached", "client_ip", c.ClientIP())
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many search requests, please slow down"})
		}),
	)

	return middleware
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, limit gin.HandlerFunc) {
	r.GET("/health", handler.GetHealth)
	r.GET("/feed.xml", handler.GetFeed)
	r.GET("/templates", handler.ListTemplates)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/verify", handler.Verify)
	}

	content := r.Group("/content")
	{
		content.GET("", handler.ListContent)
		content.GET("/:id", handler.GetContent)
		content.POST("", requireAuth(), handler.CreateContent)
		content.PUT("/:id", requireAuth(), handler.UpdateContent)
		content.DELETE("/:id", requireAuth(), handler.DeleteContent)
	}

	interactions := r.Group("/interactions")
	{
		interactions.GET("/:contentId", handler.GetInteractions)
		interactions.POST("", handler.RecordInteraction)
	}

	r.GET("/search", limit, handler.Search)

	users := r.Group("/users", requireAuth())
	{
		users.GET("", requireAdmin(), handler.ListUsers)
		users.GET("/me", handler.GetCurrentUser)
		users.POST("", requireAdmin(), handler.CreateUser)
		users.PUT("/:id", handler.UpdateUser)
		users.DELETE("/:id", requireAdmin(), handler.DeleteUser)
	}

	settings := r.Group("/settings", requireAuth())
	{
		settings.GET("/openai-key", handler.GetAPIKeyStatus)
		settings.POST("/openai-key", requireAdmin(), handler.SetAPIKey)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Quill",
			"version": handler.version,
			"endpoints": map[string]string{
				"content":      "/content",
				"interactions": "/interactions/<contentId>",
				"search":       "/search?q=<query>&generate=true&ai=hosted|local",
				"feed":         "/feed.xml",
				"health":       "/health",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}
