package api

import (
	"context"

	"github.com/lysyi3m/quill/app/auth"
	"github.com/lysyi3m/quill/app/database"
	"github.com/lysyi3m/quill/app/feed"
	"github.com/lysyi3m/quill/app/generate"
	"github.com/lysyi3m/quill/app/search"
)

type SearcherInterface interface {
	Search(ctx context.Context, query search.Query) (*search.Result, error)
}

type TokenServiceInterface interface {
	Issue(principal auth.Principal) (string, error)
	Verify(raw string) (*auth.Principal, error)
}

type TemplateCatalogInterface interface {
	Validate(name string) error
	GetTemplates() []feed.Template
}

type GeneratorInterface interface {
	Run(items []database.Content) (string, error)
}

type StatusBoardInterface interface {
	Snapshot() []generate.Status
}

type CacheHealthInterface interface {
	Health(ctx context.Context) map[string]any
}

var (
	_ SearcherInterface        = (*search.Searcher)(nil)
	_ TokenServiceInterface    = (*auth.TokenIssuer)(nil)
	_ TemplateCatalogInterface = (*feed.TemplateCatalog)(nil)
	_ GeneratorInterface       = (*feed.Generator)(nil)
	_ StatusBoardInterface     = (*generate.StatusBoard)(nil)
)

// Dependencies lists what the handlers need. Cache is optional.
type Dependencies struct {
	Content      database.ContentStore
	Interactions database.InteractionStore
	Users        database.UserStore
	Settings     database.SettingsStore
	Searcher     SearcherInterface
	Tokens       TokenServiceInterface
	Templates    TemplateCatalogInterface
	Generator    GeneratorInterface
	Providers    StatusBoardInterface
	Cache        CacheHealthInterface
	Version      string
}

type Handler struct {
	content      database.ContentStore
	interactions database.InteractionStore
	users        database.UserStore
	settings     database.SettingsStore
	searcher     SearcherInterface
	tokens       TokenServiceInterface
	templates    TemplateCatalogInterface
	generator    GeneratorInterface
	providers    StatusBoardInterface
	cache        CacheHealthInterface
	version      string
}

// Request bodies

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type createContentRequest struct {
	Title         string          `json:"title"`
	Body          string          `json:"body"`
	Status        database.Status `json:"status"`
	Template      string          `json:"template"`
	FeaturedImage *string         `json:"featured_image"`
	Tags          []string        `json:"tags"`
}

type updateContentRequest struct {
	Title         *string          `json:"title"`
	Body          *string          `json:"body"`
	Status        *database.Status `json:"status"`
	Template      *string          `json:"template"`
	FeaturedImage *string          `json:"featured_image"`
	Tags          *[]string        `json:"tags"`
}

type interactionRequest struct {
	ContentID   int64           `json:"contentId"`
	Fingerprint string          `json:"fingerprint"`
	Action      database.Action `json:"action"`
	Comment     string          `json:"comment"`
}

type createUserRequest struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Role     database.Role `json:"role"`
}

type updateUserRequest struct {
	Name     *string        `json:"name"`
	Email    *string        `json:"email"`
	Password *string        `json:"password"`
	Role     *database.Role `json:"role"`
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}
