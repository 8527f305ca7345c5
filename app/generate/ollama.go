package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const ollamaNotRunning = "Ollama server is not running. Please start the Ollama server or switch to OpenAI."

type Ollama struct {
	httpClient *http.Client
	baseURL    string
	model      string
	timeout    time.Duration
}

func NewOllama(httpClient *http.Client, baseURL, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		timeout:    timeout,
	}
}

func (p *Ollama) Name() string {
	return "ollama"
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (p *Ollama) Generate(ctx context.Context, topic string) (string, error) {
	if p.baseURL == "" {
		return "", notConfigured(p.Name(), "Ollama URL not configured")
	}

	payload, err := json.Marshal(ollamaRequest{
		Model:  p.model,
		Prompt: "Write a detailed blog post about: " + topic,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport(timeoutCtx, p.Name(), "Ollama generation", err, ollamaNotRunning)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", upstream(p.Name(), "Ollama generation failed", fmt.Errorf("%s", readError(resp)))
	}

	var decoded ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", upstream(p.Name(), "Ollama returned an unreadable response", err)
	}
	if decoded.Error != "" {
		return "", upstream(p.Name(), "Ollama generation failed", fmt.Errorf("%s", decoded.Error))
	}
	if strings.TrimSpace(decoded.Response) == "" {
		return "", upstream(p.Name(), "Ollama returned no content", nil)
	}

	return decoded.Response, nil
}

// Ping hits the model listing endpoint.
func (p *Ollama) Ping(ctx context.Context) error {
	if p.baseURL == "" {
		return notConfigured(p.Name(), "Ollama URL not configured")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return classifyTransport(timeoutCtx, p.Name(), "Ollama probe", err, ollamaNotRunning)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return upstream(p.Name(), "Ollama probe failed", fmt.Errorf("%s", readError(resp)))
	}
	return nil
}
