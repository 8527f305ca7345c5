package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/quill/app/database"
)

const (
	openAISystemPrompt = "You are a knowledgeable blog writer. Create a detailed, well-structured article about the given topic."
	openAIMaxTokens    = 1000
	openAITemperature  = 0.7
)

// KeyStore is where an API key saved at runtime lives.
type KeyStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
}

type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	model      string
	timeout    time.Duration
	keys       KeyStore
	envKey     string
}

func NewOpenAI(httpClient *http.Client, baseURL, model string, timeout time.Duration, keys KeyStore, envKey string) *OpenAI {
	return &OpenAI{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		timeout:    timeout,
		keys:       keys,
		envKey:     envKey,
	}
}

func (p *OpenAI) Name() string {
	return "openai"
}

// APIKey resolves the key per call so a key saved through settings applies
// without a restart. The stored setting wins over the configured value.
func (p *OpenAI) APIKey(ctx context.Context) (string, error) {
	if p.keys != nil {
		key, ok, err := p.keys.GetSetting(ctx, database.SettingOpenAIKey)
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		if ok && strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), nil
		}
	}

	if key := strings.TrimSpace(p.envKey); key != "" {
		return key, nil
	}

	return "", notConfigured(p.Name(), "OpenAI API key not configured")
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *OpenAI) Generate(ctx context.Context, topic string) (string, error) {
	key, err := p.APIKey(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: openAISystemPrompt},
			{Role: "user", Content: "Write a blog post about: " + topic},
		},
		Temperature: openAITemperature,
		MaxTokens:   openAIMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport(timeoutCtx, p.Name(), "OpenAI request", err, "OpenAI API is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", notConfigured(p.Name(), "OpenAI API key was rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return "", upstream(p.Name(), "OpenAI generation failed", fmt.Errorf("%s", readError(resp)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", upstream(p.Name(), "OpenAI returned an unreadable response", err)
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", upstream(p.Name(), "OpenAI returned no content", nil)
	}

	return decoded.Choices[0].Message.Content, nil
}

// Ping lists models, which checks both reachability and the key.
func (p *OpenAI) Ping(ctx context.Context) error {
	key, err := p.APIKey(ctx)
	if err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return classifyTransport(timeoutCtx, p.Name(), "OpenAI probe", err, "OpenAI API is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return notConfigured(p.Name(), "OpenAI API key was rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return upstream(p.Name(), "OpenAI probe failed", fmt.Errorf("%s", readError(resp)))
	}
	return nil
}
