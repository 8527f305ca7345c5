package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/quill/app/api"
	"github.com/lysyi3m/quill/app/auth"
	"github.com/lysyi3m/quill/app/cache"
	"github.com/lysyi3m/quill/app/cfg"
	"github.com/lysyi3m/quill/app/database"
	"github.com/lysyi3m/quill/app/feed"
	"github.com/lysyi3m/quill/app/generate"
	"github.com/lysyi3m/quill/app/search"
	"github.com/lysyi3m/quill/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Quill server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	contentRepo := database.NewContentRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	userRepo := database.NewUserRepository(db)
	settingsRepo := database.NewSettingsRepository(db)

	if err := seedAdmin(userRepo, appCfg); err != nil {
		slog.Error("Failed to seed admin user", "error", err)
		os.Exit(1)
	}

	templates := feed.NewTemplateCatalog(appCfg.TemplatesDir)
	if err := templates.Run(); err != nil {
		slog.Error("Failed to load templates", "dir", appCfg.TemplatesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Templates loaded", "dir", appCfg.TemplatesDir, "count", templates.GetTemplateCount())

	// Provider requests carry their own deadline
	httpClient := &http.Client{}

	registry := generate.NewRegistry(appCfg.DefaultProvider)
	registry.Register(generate.Hosted, generate.NewOpenAI(httpClient, appCfg.OpenAIURL, appCfg.OpenAIModel,
		appCfg.ProviderTimeout, settingsRepo, appCfg.OpenAIKey))
	if appCfg.OllamaURL != "" {
		registry.Register(generate.Local, generate.NewOllama(httpClient, appCfg.OllamaURL, appCfg.OllamaModel,
			appCfg.ProviderTimeout))
	}

	var articleCache search.ArticleCache
	var cacheHealth api.CacheHealthInterface
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewCache(context.Background(), appCfg.RedisAddr, appCfg.CacheTTL)
		if err != nil {
			slog.Warn("Redis unavailable, generated articles will not be cached", "addr", appCfg.RedisAddr, "error", err)
		} else {
			defer redisCache.Close()
			articleCache = redisCache
			cacheHealth = redisCache
		}
	}

	board := generate.NewStatusBoard()

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.ProbeInterval.String())
	scheduler := tasks.NewScheduler(registry, board, appCfg.ProbeInterval, appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	baseURL := cmp.Or(appCfg.BaseUrl, "http://localhost:"+appCfg.Port)

	handler := api.NewHandler(api.Dependencies{
		Content:      contentRepo,
		Interactions: interactionRepo,
		Users:        userRepo,
		Settings:     settingsRepo,
		Searcher:     search.NewSearcher(contentRepo, registry, articleCache),
		Tokens:       auth.NewTokenIssuer(appCfg.JWTSecret, appCfg.TokenTTL),
		Templates:    templates,
		Generator:    feed.NewGenerator(baseURL, "Quill", appCfg.Version, feed.NewExcerptExtractor(feed.DefaultExcerptLength)),
		Providers:    board,
		Cache:        cacheHealth,
		Version:      appCfg.Version,
	})
	server := api.NewServer(handler, api.ServerOptions{
		CORSOrigins:     appCfg.CORSOrigins,
		SearchRateLimit: appCfg.SearchRateLimit,
		Debug:           appCfg.Debug,
	})

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appCfg.ProviderTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "base_url", baseURL)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler, cache and database are closed via defer
	slog.Info("Quill server shutdown complete")
}

// seedAdmin makes sure the configured admin account exists. An existing
// account is left untouched.
func seedAdmin(users *database.UserRepository, appCfg *cfg.Cfg) error {
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		return nil
	}

	hash, err := auth.HashPassword(appCfg.AdminPassword)
	if err != nil {
		return err
	}

	user, created, err := users.EnsureUser(context.Background(), database.NewUser{
		Name:         appCfg.AdminName,
		Email:        appCfg.AdminEmail,
		PasswordHash: hash,
		Role:         database.RoleAdmin,
	})
	if err != nil {
		return err
	}

	if created {
		slog.Info("Admin user created", "email", user.Email)
	}
	return nil
}
