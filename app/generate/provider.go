package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
)

const (
	Hosted = "hosted"
	Local  = "local"
)

// Provider turns a prompt into generated text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, topic string) (string, error)
	Ping(ctx context.Context) error
}

// Article is a synthesized search result. It is never persisted.
type Article struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Generated bool   `json:"generated"`
	Source    string `json:"source"`
}

// Kind maps a request value to a provider kind. The vendor names are accepted
// as aliases.
func Kind(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Hosted, "openai":
		return Hosted, true
	case Local, "ollama":
		return Local, true
	}
	return "", false
}

// classifyTransport maps a failed HTTP round trip to a ProviderError.
func classifyTransport(ctx context.Context, provider, action string, err error, refusedMessage string) error {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return unreachable(provider, refusedMessage, err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return upstream(provider, action+" timed out", err)
	default:
		return unreachable(provider, action+" failed", err)
	}
}

func readError(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	body := strings.TrimSpace(string(data))
	if body == "" {
		return fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, body)
}
