package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/quill.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"3000" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://cms.example.com)"`
	TemplatesDir string `long:"templates-dir" env:"TEMPLATES_DIR" default:"./templates" description:"Directory containing content template definitions"`
	CORSOrigins  string `long:"cors-origins" env:"CORS_ORIGINS" default:"*" description:"Comma-separated list of allowed CORS origins"`

	// Authentication
	JWTSecret     string `long:"jwt-secret" env:"JWT_SECRET" description:"Secret used to sign access tokens (required)" required:"true"`
	TokenTTL      int    `long:"token-ttl" env:"TOKEN_TTL" default:"24" description:"Access token lifetime in hours"`
	AdminName     string `long:"admin-name" env:"ADMIN_NAME" default:"Admin User" description:"Name of the seeded admin account"`
	AdminEmail    string `long:"admin-email" env:"ADMIN_EMAIL" default:"admin@example.com" description:"Email of the seeded admin account"`
	AdminPassword string `long:"admin-password" env:"ADMIN_PASSWORD" default:"admin123" description:"Password of the seeded admin account"`

	// Generation providers
	OpenAIKey       string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"Hosted provider API key (can also be stored via /settings)"`
	OpenAIURL       string `long:"openai-url" env:"OPENAI_URL" default:"https://api.openai.com/v1" description:"Hosted provider base URL"`
	OpenAIModel     string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-3.5-turbo" description:"Hosted provider model"`
	OllamaURL       string `long:"ollama-url" env:"OLLAMA_URL" default:"http://localhost:11434" description:"Local inference server URL"`
	OllamaModel     string `long:"ollama-model" env:"OLLAMA_MODEL" default:"mistral" description:"Local inference model"`
	ProviderTimeout int    `long:"provider-timeout" env:"PROVIDER_TIMEOUT" default:"60" description:"Generation request timeout in seconds"`
	DefaultProvider string `long:"default-provider" env:"DEFAULT_PROVIDER" default:"local" choice:"local" choice:"hosted" description:"Provider used when a search does not name one"`

	// Cache and limits
	RedisAddr       string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for caching generated articles (optional)"`
	CacheTTL        int    `long:"cache-ttl" env:"CACHE_TTL" default:"3600" description:"Generated article cache TTL in seconds"`
	SearchRateLimit int    `long:"search-rate-limit" env:"SEARCH_RATE_LIMIT" default:"20" description:"Search requests per minute per client"`

	// Background tasks
	WorkerCount   int `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	ProbeInterval int `long:"probe-interval" env:"PROBE_INTERVAL" default:"60" description:"Provider probe interval in seconds"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		Port:            raw.Port,
		BaseUrl:         strings.TrimRight(raw.BaseUrl, "/"),
		TemplatesDir:    raw.TemplatesDir,
		CORSOrigins:     splitList(raw.CORSOrigins),
		JWTSecret:       raw.JWTSecret,
		TokenTTL:        time.Duration(raw.TokenTTL) * time.Hour,
		AdminName:       raw.AdminName,
		AdminEmail:      raw.AdminEmail,
		AdminPassword:   raw.AdminPassword,
		OpenAIKey:       raw.OpenAIKey,
		OpenAIURL:       strings.TrimRight(raw.OpenAIURL, "/"),
		OpenAIModel:     raw.OpenAIModel,
		OllamaURL:       strings.TrimRight(raw.OllamaURL, "/"),
		OllamaModel:     raw.OllamaModel,
		ProviderTimeout: time.Duration(raw.ProviderTimeout) * time.Second,
		DefaultProvider: raw.DefaultProvider,
		RedisAddr:       raw.RedisAddr,
		CacheTTL:        time.Duration(raw.CacheTTL) * time.Second,
		SearchRateLimit: raw.SearchRateLimit,
		WorkerCount:     raw.WorkerCount,
		ProbeInterval:   time.Duration(raw.ProbeInterval) * time.Second,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func validate(raw *rawCfg) error {
	positiveFields := map[string]int{
		"token ttl":         raw.TokenTTL,
		"provider timeout":  raw.ProviderTimeout,
		"search rate limit": raw.SearchRateLimit,
		"worker count":      raw.WorkerCount,
		"probe interval":    raw.ProbeInterval,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if raw.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must be non-negative")
	}

	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
