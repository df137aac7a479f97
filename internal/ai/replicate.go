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

const replicateEndpointFmt = "https://api.replicate.com/v1/models/%s/predictions"

// ReplicateProvider completes prompts via Replicate's synchronous
// predictions API. The Prefer: wait header blocks until the prediction
// finishes, bounded by the configured timeout.
type ReplicateProvider struct {
	apiToken string
	cfg      config.ProviderConfig
	client   *http.Client
}

// NewReplicateProvider creates a ReplicateProvider with the resolved API token.
func NewReplicateProvider(cfg config.ProviderConfig, apiToken string) *ReplicateProvider {
	return &ReplicateProvider{
		apiToken: apiToken,
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *ReplicateProvider) Name() string { return "replicate" }

type replicateRequest struct {
	Input replicateInput `json:"input"`
}

type replicateInput struct {
	Prompt            string  `json:"prompt"`
	MaxNewTokens      int     `json:"max_new_tokens,omitempty"`
	Temperature       float64 `json:"temperature,omitempty"`
	TopP              float64 `json:"top_p,omitempty"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty"`
}

type replicateResponse struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

func (p *ReplicateProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}

	body, err := json.Marshal(replicateRequest{
		Input: replicateInput{
			Prompt:            prompt,
			MaxNewTokens:      maxTokens,
			Temperature:       p.cfg.Temperature,
			TopP:              p.cfg.TopP,
			RepetitionPenalty: p.cfg.RepetitionPenalty,
		},
	})
	if err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "marshal request", err)
	}

	endpoint := fmt.Sprintf(replicateEndpointFmt, p.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiToken)
	req.Header.Set("Prefer", "wait")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", transportError(p.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(p.Name(), err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httpError(p.Name(), resp.StatusCode, string(respBody))
	}

	var parsed replicateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "decode response", err)
	}
	if parsed.Error != "" {
		return "", models.NewProviderError(p.Name(), models.ProviderTransient, parsed.Error, nil)
	}

	text := strings.TrimSpace(decodeReplicateOutput(parsed.Output))
	// Some models echo the prompt back at the head of the output.
	text = strings.TrimSpace(strings.TrimPrefix(text, prompt))
	if text == "" {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "empty completion", nil)
	}
	return text, nil
}

// decodeReplicateOutput handles the two output shapes the predictions API
// returns: a plain string or an array of string chunks.
func decodeReplicateOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var chunks []string
	if err := json.Unmarshal(raw, &chunks); err == nil {
		return strings.Join(chunks, "")
	}
	return ""
}

var _ Provider = (*ReplicateProvider)(nil)
