package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/retroverse-studios/reality-reigns/internal/config"
)

const defaultOllamaURL = "http://localhost:11434"

type ollamaBackend struct {
	client *api.Client
	model  string
}

func newOllamaBackend(cfg config.GeneratorConfig) (*ollamaBackend, error) {
	// api.NewClient wants the server root, without the OpenAI-compatible /v1 suffix
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
	if baseURL == "" || strings.Contains(baseURL, "api.openai.com") {
		baseURL = defaultOllamaURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", baseURL, err)
	}

	return &ollamaBackend{
		client: api.NewClient(parsed, &http.Client{Timeout: cfg.Timeout.Duration}),
		model:  cfg.Model,
	}, nil
}

func (b *ollamaBackend) name() string { return "ollama" }

func (b *ollamaBackend) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: b.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: map[string]interface{}{"temperature": temperature},
	}

	var resp api.ChatResponse
	err := b.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}

	if resp.Message.Content == "" {
		return "", errors.New("ollama returned an empty reply")
	}
	return resp.Message.Content, nil
}
