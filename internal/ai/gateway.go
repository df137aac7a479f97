package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrison/docparser/internal/config"
	"github.com/harrison/docparser/internal/logger"
	"github.com/harrison/docparser/internal/models"
)

// ErrChainExhausted is returned when every usable provider in the chain
// has failed. Callers fall back to basic analysis; this error never
// aborts a run.
var ErrChainExhausted = errors.New("all providers in fallback chain exhausted")

const (
	// maxRetries is the number of retries per provider on transient
	// failures. Permanent failures advance the chain immediately.
	maxRetries = 1

	// backoffBase is the first retry delay; it doubles per retry.
	backoffBase = 500 * time.Millisecond
)

// ProviderStatus describes one configured provider for introspection.
type ProviderStatus struct {
	Name         string
	Enabled      bool
	Credentialed bool
	Usable       bool
	Default      bool
}

// Gateway routes completion requests through the provider fallback chain.
// Unusable providers (disabled or missing credentials) are skipped without
// consuming an attempt; transient failures earn one retry with backoff.
type Gateway struct {
	chain     []string
	providers map[string]Provider
	statuses  []ProviderStatus
	log       logger.Logger

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewGateway builds a Gateway from configuration, constructing a provider
// instance for every usable entry in the effective chain.
func NewGateway(cfg *config.Config, log logger.Logger) (*Gateway, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	g := &Gateway{
		chain:     cfg.Chain(),
		providers: make(map[string]Provider),
		log:       log,
		sleep:     time.Sleep,
	}

	for _, id := range cfg.ProviderIDs() {
		pc := cfg.Providers[id]
		cred := cfg.Credential(id)
		credentialed := pc.APIKeyEnv == "" || cred != ""
		usable := pc.Enabled && credentialed

		g.statuses = append(g.statuses, ProviderStatus{
			Name:         id,
			Enabled:      pc.Enabled,
			Credentialed: credentialed,
			Usable:       usable,
			Default:      id == cfg.Default,
		})

		if !usable {
			continue
		}

		switch id {
		case "openai":
			g.providers[id] = NewOpenAIProvider(pc, cred)
		case "anthropic":
			g.providers[id] = NewAnthropicProvider(pc, cred)
		case "gemini":
			g.providers[id] = NewGeminiProvider(pc, cred)
		case "replicate":
			g.providers[id] = NewReplicateProvider(pc, cred)
		case "ollama":
			p, err := NewOllamaProvider(pc)
			if err != nil {
				return nil, err
			}
			g.providers[id] = p
		default:
			return nil, models.NewConfigError("ai_providers."+id,
				"unknown provider in configuration", nil)
		}
	}

	return g, nil
}

// Available reports whether at least one usable provider is in the chain.
func (g *Gateway) Available() bool {
	return g.Active() != ""
}

// Active returns the first usable provider in the chain, or empty when
// none is usable.
func (g *Gateway) Active() string {
	for _, id := range g.chain {
		if _, ok := g.providers[id]; ok {
			return id
		}
	}
	return ""
}

// Statuses returns per-provider availability for introspection, sorted by
// provider name.
func (g *Gateway) Statuses() []ProviderStatus {
	out := make([]ProviderStatus, len(g.statuses))
	copy(out, g.statuses)
	return out
}

// Complete walks the fallback chain until one provider succeeds. It
// returns the generated text and the provider that produced it. Only a
// cancelled context or full chain exhaustion yields an error.
func (g *Gateway) Complete(ctx context.Context, prompt string, maxTokens int) (string, string, error) {
	attempted := 0

	for _, id := range g.chain {
		provider, ok := g.providers[id]
		if !ok {
			g.log.LogTrace(fmt.Sprintf("Provider %s not usable, skipping", id))
			continue
		}
		attempted++

		text, err := g.attempt(ctx, provider, prompt, maxTokens)
		if err == nil {
			return text, id, nil
		}
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		g.log.LogWarn(fmt.Sprintf("Provider %s failed, advancing chain: %v", id, err))
	}

	if attempted == 0 {
		g.log.LogDebug("No usable providers in fallback chain")
	}
	return "", "", ErrChainExhausted
}

// attempt calls one provider, retrying transient failures with backoff.
func (g *Gateway) attempt(ctx context.Context, provider Provider, prompt string, maxTokens int) (string, error) {
	backoff := backoffBase
	var lastErr error

	for try := 0; try <= maxRetries; try++ {
		if try > 0 {
			g.log.LogDebug(fmt.Sprintf("Retrying %s after %v (attempt %d)", provider.Name(), backoff, try+1))
			g.sleep(backoff)
			backoff *= 2
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := provider.Complete(ctx, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !models.IsTransient(err) {
			break
		}
	}
	return "", lastErr
}
