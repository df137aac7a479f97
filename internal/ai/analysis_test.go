package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrison/docparser/internal/models"
)

const longContent = "This is a reasonably long piece of content that easily clears the minimum length checks. It continues for a while."

func TestAnalyzerDisabledMarksSourceNone(t *testing.T) {
	g, _ := testGateway(nil, map[string]Provider{})
	a := NewAnalyzer(g, false, nil)

	e := a.SummarizeDocument(context.Background(), longContent, "Alpha")
	assert.Equal(t, models.SourceNone, e.Source)
	assert.Empty(t, e.Text)

	e = a.AnalyzeDocument(context.Background(), longContent, "a.txt", "Alpha", "")
	assert.Equal(t, models.SourceNone, e.Source)
}

func TestAnalyzerProviderSuccess(t *testing.T) {
	p := &fakeProvider{name: "openai", texts: []string{"an AI summary"}, errs: []error{nil}}
	g, _ := testGateway([]string{"openai"}, map[string]Provider{"openai": p})
	a := NewAnalyzer(g, true, nil)

	e := a.SummarizeDocument(context.Background(), longContent, "Alpha")
	assert.Equal(t, models.SourceProvider, e.Source)
	assert.Equal(t, "openai", e.Provider)
	assert.Equal(t, "an AI summary", e.Text)
	assert.False(t, e.Degraded())
}

func TestAnalyzerDegradesToBasic(t *testing.T) {
	p := &fakeProvider{name: "openai", texts: []string{""}, errs: []error{permanent("openai")}}
	g, _ := testGateway([]string{"openai"}, map[string]Provider{"openai": p})
	a := NewAnalyzer(g, true, nil)

	e := a.SummarizeDocument(context.Background(), longContent, "")
	assert.Equal(t, models.SourceBasic, e.Source)
	assert.True(t, e.Degraded())
	assert.NotEmpty(t, e.Text)

	e = a.AnalyzeDocument(context.Background(), longContent, "a.txt", "Alpha", "specs")
	assert.Equal(t, models.SourceBasic, e.Source)
	assert.Contains(t, e.Text, "Document Analysis (Basic)")
}

func TestAnalyzerShortContentSkipsProviders(t *testing.T) {
	p := &fakeProvider{name: "openai", texts: []string{"unused"}, errs: []error{nil}}
	g, _ := testGateway([]string{"openai"}, map[string]Provider{"openai": p})
	a := NewAnalyzer(g, true, nil)

	e := a.SummarizeDocument(context.Background(), "tiny", "")
	assert.Equal(t, models.SourceBasic, e.Source)
	assert.Equal(t, 0, p.calls)
}

func TestAnalyzerProjectAnalysis(t *testing.T) {
	p := &capturingProvider{name: "openai", text: "project looks solid"}
	g, _ := testGateway([]string{"openai"}, map[string]Provider{"openai": p})
	a := NewAnalyzer(g, true, nil)

	rollup := &models.ProjectRollup{
		Name:       "Alpha",
		FileCount:  2,
		Formats:    map[string]int{".txt": 1, ".md": 1},
		Subfolders: []string{"specs"},
	}
	e := a.AnalyzeProject(context.Background(), rollup)

	assert.Equal(t, models.SourceProvider, e.Source)
	assert.Contains(t, p.prompt, "Project: Alpha")
	assert.Contains(t, p.prompt, "2 files")
	assert.Contains(t, p.prompt, ".md, .txt")
}

func TestAnalyzerCrossProjectPromptIsDeterministic(t *testing.T) {
	p := &capturingProvider{name: "openai", text: "portfolio assessment"}
	g, _ := testGateway([]string{"openai"}, map[string]Provider{"openai": p})
	a := NewAnalyzer(g, true, nil)

	rollups := map[string]*models.ProjectRollup{
		"Beta":  {Name: "Beta", FileCount: 1, Formats: map[string]int{".txt": 1}},
		"Alpha": {Name: "Alpha", FileCount: 2, Formats: map[string]int{".md": 2}},
	}
	e := a.AnalyzeCrossProject(context.Background(), rollups)

	assert.Equal(t, models.SourceProvider, e.Source)
	assert.Contains(t, p.prompt, "2 projects, 3 files")
	alphaIdx := strings.Index(p.prompt, "- Alpha:")
	betaIdx := strings.Index(p.prompt, "- Beta:")
	assert.True(t, alphaIdx >= 0 && betaIdx > alphaIdx, "projects must be listed in sorted order")
}

func TestAnalyzerLongContentTruncated(t *testing.T) {
	p := &capturingProvider{name: "openai", text: "ok"}
	g, _ := testGateway([]string{"openai"}, map[string]Provider{"openai": p})
	a := NewAnalyzer(g, true, nil)

	huge := strings.Repeat("x", 10000)
	a.SummarizeDocument(context.Background(), huge, "")

	assert.Less(t, len(p.prompt), 5000, "document content must be capped in prompts")
	assert.Contains(t, p.prompt, "...")
}

// capturingProvider records the last prompt it received.
type capturingProvider struct {
	name   string
	text   string
	prompt string
}

func (c *capturingProvider) Name() string { return c.name }

func (c *capturingProvider) Complete(_ context.Context, prompt string, _ int) (string, error) {
	c.prompt = prompt
	return c.text, nil
}
