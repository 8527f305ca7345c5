package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/quill/app/auth"
	"github.com/lysyi3m/quill/app/database"
	"github.com/lysyi3m/quill/app/feed"
	"github.com/lysyi3m/quill/app/generate"
	"github.com/lysyi3m/quill/app/search"
)

type fakeProvider struct {
	name string
	text string
	err  error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(context.Context, string) (string, error) { return p.text, p.err }

func (p *fakeProvider) Ping(context.Context) error { return p.err }

type testServer struct {
	engine *gin.Engine
	db     *database.DB
	tokens *auth.TokenIssuer
	users  *database.UserRepository
}

type serverOption func(*generate.Registry)

func withProvider(kind string, provider generate.Provider) serverOption {
	return func(r *generate.Registry) { r.Register(kind, provider) }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, _, err = database.RunMigrations(db)
	require.NoError(t, err)

	registry := generate.NewRegistry(generate.Local)
	for _, opt := range opts {
		opt(registry)
	}

	contentRepo := database.NewContentRepository(db)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	users := database.NewUserRepository(db)

	handler := NewHandler(Dependencies{
		Content:      contentRepo,
		Interactions: database.NewInteractionRepository(db),
		Users:        users,
		Settings:     database.NewSettingsRepository(db),
		Searcher:     search.NewSearcher(contentRepo, registry, nil),
		Tokens:       tokens,
		Templates:    feed.NewTemplateCatalog(""),
		Generator:    feed.NewGenerator("http://quill.test", "Quill", "test", feed.NewExcerptExtractor(0)),
		Providers:    generate.NewStatusBoard(),
		Version:      "test",
	})

	return &testServer{
		engine: NewServer(handler, ServerOptions{CORSOrigins: []string{"*"}, SearchRateLimit: 100}),
		db:     db,
		tokens: tokens,
		users:  users,
	}
}

// createUser stores a user with password "password123" and returns a bearer token.
func (s *testServer) createUser(t *testing.T, name, email string, role database.Role) (*database.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user, err := s.users.CreateUser(context.Background(), database.NewUser{Name: name, Email: email, PasswordHash: hash, Role: role})
	require.NoError(t, err)

	token, err := s.tokens.Issue(auth.PrincipalFromUser(user))
	require.NoError(t, err)

	return user, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value), rec.Body.String())
	return value
}
