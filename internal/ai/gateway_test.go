package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docparser/internal/config"
	"github.com/harrison/docparser/internal/logger"
	"github.com/harrison/docparser/internal/models"
)

// fakeProvider returns scripted outcomes in order, then repeats the last.
type fakeProvider struct {
	name  string
	texts []string
	errs  []error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(_ context.Context, _ string, _ int) (string, error) {
	i := f.calls
	if i >= len(f.errs) {
		i = len(f.errs) - 1
	}
	f.calls++
	return f.texts[i], f.errs[i]
}

func transient(name string) error {
	return models.NewProviderError(name, models.ProviderTransient, "timeout", nil)
}

func permanent(name string) error {
	return models.NewProviderError(name, models.ProviderPermanent, "unauthorized", nil)
}

// testGateway wires fakes into a Gateway with an instant sleep.
func testGateway(chain []string, providers map[string]Provider) (*Gateway, *[]time.Duration) {
	var slept []time.Duration
	g := &Gateway{
		chain:     chain,
		providers: providers,
		sleep:     func(d time.Duration) { slept = append(slept, d) },
		log:       logger.NewNoOpLogger(),
	}
	return g, &slept
}

func TestCompleteFirstProviderSucceeds(t *testing.T) {
	first := &fakeProvider{name: "openai", texts: []string{"summary"}, errs: []error{nil}}
	second := &fakeProvider{name: "anthropic", texts: []string{"unused"}, errs: []error{nil}}
	g, _ := testGateway([]string{"openai", "anthropic"}, map[string]Provider{
		"openai": first, "anthropic": second,
	})

	text, provider, err := g.Complete(context.Background(), "prompt", 60)
	require.NoError(t, err)
	assert.Equal(t, "summary", text)
	assert.Equal(t, "openai", provider)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "chain must stop at first success")
}

func TestCompleteSkipsUnusableProviders(t *testing.T) {
	usable := &fakeProvider{name: "gemini", texts: []string{"ok"}, errs: []error{nil}}
	g, _ := testGateway([]string{"openai", "anthropic", "gemini"}, map[string]Provider{
		"gemini": usable,
	})

	text, provider, err := g.Complete(context.Background(), "prompt", 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, "gemini", provider)
}

func TestCompleteRetriesTransientOnce(t *testing.T) {
	flaky := &fakeProvider{
		name:  "openai",
		texts: []string{"", "recovered"},
		errs:  []error{transient("openai"), nil},
	}
	g, slept := testGateway([]string{"openai"}, map[string]Provider{"openai": flaky})

	text, provider, err := g.Complete(context.Background(), "prompt", 0)
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, "openai", provider)
	assert.Equal(t, 2, flaky.calls)
	require.Len(t, *slept, 1)
	assert.Equal(t, 500*time.Millisecond, (*slept)[0])
}

func TestCompleteTransientExhaustsAfterRetry(t *testing.T) {
	flaky := &fakeProvider{
		name:  "openai",
		texts: []string{"", ""},
		errs:  []error{transient("openai"), transient("openai")},
	}
	next := &fakeProvider{name: "anthropic", texts: []string{"fallback"}, errs: []error{nil}}
	g, _ := testGateway([]string{"openai", "anthropic"}, map[string]Provider{
		"openai": flaky, "anthropic": next,
	})

	text, provider, err := g.Complete(context.Background(), "prompt", 0)
	require.NoError(t, err)
	assert.Equal(t, "fallback", text)
	assert.Equal(t, "anthropic", provider)
	assert.Equal(t, 2, flaky.calls, "one retry only")
}

func TestCompletePermanentAdvancesImmediately(t *testing.T) {
	broken := &fakeProvider{name: "openai", texts: []string{""}, errs: []error{permanent("openai")}}
	next := &fakeProvider{name: "anthropic", texts: []string{"fallback"}, errs: []error{nil}}
	g, slept := testGateway([]string{"openai", "anthropic"}, map[string]Provider{
		"openai": broken, "anthropic": next,
	})

	text, provider, err := g.Complete(context.Background(), "prompt", 0)
	require.NoError(t, err)
	assert.Equal(t, "fallback", text)
	assert.Equal(t, "anthropic", provider)
	assert.Equal(t, 1, broken.calls, "no retry on permanent failure")
	assert.Empty(t, *slept)
}

func TestCompleteChainExhausted(t *testing.T) {
	a := &fakeProvider{name: "openai", texts: []string{""}, errs: []error{permanent("openai")}}
	b := &fakeProvider{name: "anthropic", texts: []string{""}, errs: []error{permanent("anthropic")}}
	g, _ := testGateway([]string{"openai", "anthropic"}, map[string]Provider{
		"openai": a, "anthropic": b,
	})

	_, _, err := g.Complete(context.Background(), "prompt", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChainExhausted))
}

func TestCompleteEmptyChain(t *testing.T) {
	g, _ := testGateway(nil, map[string]Provider{})
	_, _, err := g.Complete(context.Background(), "prompt", 0)
	assert.True(t, errors.Is(err, ErrChainExhausted))
}

func TestCompleteContextCancelled(t *testing.T) {
	flaky := &fakeProvider{
		name:  "openai",
		texts: []string{""},
		errs:  []error{transient("openai")},
	}
	g, _ := testGateway([]string{"openai"}, map[string]Provider{"openai": flaky})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Complete(ctx, "prompt", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestActiveAndAvailable(t *testing.T) {
	usable := &fakeProvider{name: "gemini", texts: []string{"ok"}, errs: []error{nil}}
	g, _ := testGateway([]string{"openai", "gemini"}, map[string]Provider{"gemini": usable})

	assert.True(t, g.Available())
	assert.Equal(t, "gemini", g.Active())

	empty, _ := testGateway([]string{"openai"}, map[string]Provider{})
	assert.False(t, empty.Available())
	assert.Equal(t, "", empty.Active())
}

func TestNewGatewayStatuses(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("REPLICATE_API_TOKEN", "")

	cfg := config.DefaultConfig()
	g, err := NewGateway(cfg, nil)
	require.NoError(t, err)

	byName := map[string]ProviderStatus{}
	for _, s := range g.Statuses() {
		byName[s.Name] = s
	}

	assert.True(t, byName["openai"].Usable)
	assert.True(t, byName["openai"].Default)
	assert.False(t, byName["anthropic"].Usable, "enabled but no credential")
	assert.True(t, byName["anthropic"].Enabled)
	assert.False(t, byName["ollama"].Usable, "disabled by default")
	assert.True(t, byName["ollama"].Credentialed, "ollama needs no credential")

	assert.Equal(t, "openai", g.Active())
}

func TestNewGatewayDefaultMovesToChainHead(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "g-test")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("REPLICATE_API_TOKEN", "")

	cfg := config.DefaultConfig()
	cfg.Default = "gemini"

	g, err := NewGateway(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini", g.Active())
}
