package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/quill/app/database"
	"github.com/lysyi3m/quill/app/generate"
)

type ContentSearcher interface {
	SearchPublished(ctx context.Context, term string) ([]database.Content, error)
}

type ProviderLookup interface {
	Lookup(name string) (string, generate.Provider, error)
}

// ArticleCache stores generated articles between identical searches.
type ArticleCache interface {
	GetArticle(ctx context.Context, kind, query string) (*generate.Article, bool, error)
	SetArticle(ctx context.Context, kind, query string, article *generate.Article) error
}

type Query struct {
	Term     string
	Generate bool
	Provider string
}

// Result holds either stored matches or one generated article.
type Result struct {
	Content   []database.Content
	Article   *generate.Article
	Generated bool
}

func (r Result) MarshalJSON() ([]byte, error) {
	results := []any{}
	if r.Article != nil {
		results = append(results, r.Article)
	}
	for _, item := range r.Content {
		results = append(results, item)
	}

	return json.Marshal(struct {
		Results   []any `json:"results"`
		Generated bool  `json:"generated"`
	}{results, r.Generated})
}

type Searcher struct {
	content   ContentSearcher
	providers ProviderLookup
	cache     ArticleCache
}

// NewSearcher wires the pipeline. cache may be nil.
func NewSearcher(content ContentSearcher, providers ProviderLookup, cache ArticleCache) *Searcher {
	return &Searcher{content: content, providers: providers, cache: cache}
}

// Search returns stored published matches. Only when nothing matches and
// generation was requested does it ask a provider; the generated article is
// returned but never stored as content.
func (s *Searcher) Search(ctx context.Context, query Query) (*Result, error) {
	term := strings.TrimSpace(query.Term)
	if term == "" {
		return nil, &database.ValidationError{Field: "q", Message: "search query is required"}
	}

	matches, err := s.content.SearchPublished(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search content: %w", err)
	}

	if len(matches) > 0 || !query.Generate {
		return &Result{Content: matches}, nil
	}

	kind, provider, err := s.providers.Lookup(query.Provider)
	if err != nil {
		return nil, err
	}

	if article := s.cached(ctx, kind, term); article != nil {
		return &Result{Content: []database.Content{}, Article: article, Generated: true}, nil
	}

	text, err := provider.Generate(ctx, term)
	if err != nil {
		return nil, err
	}

	article := &generate.Article{
		Title:     term,
		Body:      text,
		Generated: true,
		Source:    provider.Name(),
	}

	slog.Info("Generated article for search",
		"provider", provider.Name(),
		"query", term,
		"length", len(text))

	if s.cache != nil {
		if err := s.cache.SetArticle(ctx, kind, term, article); err != nil {
			slog.Warn("Failed to cache generated article", "provider", provider.Name(), "error", err)
		}
	}

	return &Result{Content: []database.Content{}, Article: article, Generated: true}, nil
}

func (s *Searcher) cached(ctx context.Context, kind, term string) *generate.Article {
	if s.cache == nil {
		return nil
	}

	article, ok, err := s.cache.GetArticle(ctx, kind, term)
	if err != nil {
		slog.Warn("Failed to read generated article cache", "kind", kind, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	slog.Debug("Serving cached generated article", "kind", kind, "query", term)
	return article
}
