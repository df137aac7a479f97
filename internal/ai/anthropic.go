package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/harrison/docparser/internal/config"
	"github.com/harrison/docparser/internal/models"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// AnthropicProvider completes prompts via the Anthropic messages API.
type AnthropicProvider struct {
	apiKey string
	cfg    config.ProviderConfig
	client *http.Client
}

// NewAnthropicProvider creates an AnthropicProvider with the resolved API key.
func NewAnthropicProvider(cfg config.ProviderConfig, apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey: apiKey,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       p.cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: p.cfg.Temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError(p.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(p.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", httpError(p.Name(), resp.StatusCode, string(respBody))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "decode response", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "empty completion", nil)
	}
	return text, nil
}

var _ Provider = (*AnthropicProvider)(nil)
