package cfg

import "time"

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port         string
	BaseUrl      string
	TemplatesDir string
	CORSOrigins  []string

	// Authentication
	JWTSecret string
	TokenTTL  time.Duration

	AdminName     string
	AdminEmail    string
	AdminPassword string

	// Generation providers
	OpenAIKey       string
	OpenAIURL       string
	OpenAIModel     string
	OllamaURL       string
	OllamaModel     string
	ProviderTimeout time.Duration
	DefaultProvider string

	// Cache and limits
	RedisAddr       string
	CacheTTL        time.Duration
	SearchRateLimit int

	// Background tasks
	WorkerCount   int
	ProbeInterval time.Duration

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
