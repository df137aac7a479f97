package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/harrison/docparser/internal/config"
	"github.com/harrison/docparser/internal/models"
)

const geminiEndpointFmt = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// GeminiProvider completes prompts via the Google Gemini generateContent API.
type GeminiProvider struct {
	apiKey string
	cfg    config.ProviderConfig
	client *http.Client
}

// NewGeminiProvider creates a GeminiProvider with the resolved API key.
func NewGeminiProvider(cfg config.ProviderConfig, apiKey string) *GeminiProvider {
	return &GeminiProvider{
		apiKey: apiKey,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     p.cfg.Temperature,
			TopP:            p.cfg.TopP,
		},
	})
	if err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "marshal request", err)
	}

	endpoint := fmt.Sprintf(geminiEndpointFmt, p.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

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

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "decode response", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "no candidates", nil)
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "empty completion", nil)
	}
	return text, nil
}

var _ Provider = (*GeminiProvider)(nil)
