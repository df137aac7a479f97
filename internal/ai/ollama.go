package ai

import (
	"context"
	"net/url"
	"strings"

	goollama "github.com/JexSrs/go-ollama"

	"github.com/harrison/docparser/internal/config"
	"github.com/harrison/docparser/internal/models"
)

// OllamaProvider completes prompts against a local ollama server. No
// credential is required; availability is governed by the enabled flag
// and the host being reachable.
type OllamaProvider struct {
	client *goollama.Ollama
	cfg    config.ProviderConfig
}

// NewOllamaProvider creates an OllamaProvider for the configured host.
// An unparseable host is a permanent configuration problem.
func NewOllamaProvider(cfg config.ProviderConfig) (*OllamaProvider, error) {
	host, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, models.NewConfigError("ai_providers.ollama.host",
			"invalid ollama host URL", err)
	}
	return &OllamaProvider{client: goollama.New(*host), cfg: cfg}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", models.NewProviderError(p.Name(), models.ProviderTransient, "context done", err)
	}

	res, err := p.client.Generate(
		p.client.Generate.WithModel(p.cfg.Model),
		p.client.Generate.WithPrompt(prompt),
	)
	if err != nil {
		// A local server that is down or overloaded may come back.
		return "", models.NewProviderError(p.Name(), models.ProviderTransient, "generate failed", err)
	}
	if !res.Done {
		return "", models.NewProviderError(p.Name(), models.ProviderTransient, "incomplete response", nil)
	}

	text := strings.TrimSpace(res.Response)
	if text == "" {
		return "", models.NewProviderError(p.Name(), models.ProviderPermanent, "empty completion", nil)
	}
	return text, nil
}

var _ Provider = (*OllamaProvider)(nil)
