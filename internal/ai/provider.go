// Package ai implements the provider gateway: a fallback chain over
// multiple AI completion providers with retry classification and a
// deterministic non-AI fallback, so enrichment degrades instead of
// failing.
package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harrison/docparser/internal/models"
)

// Provider is a single AI completion backend. Implementations own their
// request shaping and response mapping; failures come back as typed
// ProviderErrors so the gateway can classify them for retry.
type Provider interface {
	// Name returns the provider identifier (openai, anthropic, ...).
	Name() string

	// Complete sends the prompt and returns the generated text.
	// maxTokens bounds the response length; 0 uses the configured value.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// classifyStatus maps an HTTP response status to a retry classification.
// Timeouts and rate limits are worth one retry; auth and request-shape
// failures are not.
func classifyStatus(status int) models.ProviderErrorKind {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return models.ProviderTransient
	case status >= 500:
		return models.ProviderTransient
	default:
		return models.ProviderPermanent
	}
}

// httpError builds a ProviderError for a non-2xx response.
func httpError(provider string, status int, body string) *models.ProviderError {
	if len(body) > 200 {
		body = body[:200]
	}
	return models.NewProviderError(provider, classifyStatus(status),
		fmt.Sprintf("http %d: %s", status, body), nil)
}

// transportError builds a transient ProviderError for a failed request.
// Network-level failures (connection refused, timeout, DNS) are always
// worth a retry.
func transportError(provider string, err error) *models.ProviderError {
	return models.NewProviderError(provider, models.ProviderTransient, "request failed", err)
}
