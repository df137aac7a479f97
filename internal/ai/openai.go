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

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider completes prompts via the OpenAI chat completions API.
type OpenAIProvider struct {
	apiKey string
	cfg    config.ProviderConfig
	client *http.Client
}

// NewOpenAIProvider creates an OpenAIProvider with the resolved API key.
func NewOpenAIProvider(cfg config.ProviderConfig, apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey: apiKey,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	TopP        float64         `json:"top_p,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}

	body, err := json.Marshal(openAIRequest{
		Model:       p.cfg.Model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: p.cfg.Temperature,
		TopP:        p.cfg.TopP,
	})
	if err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

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

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "empty response", nil)
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "empty completion", nil)
	}
	return text, nil
}

var _ Provider = (*OpenAIProvider)(nil)
