package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/docparser/internal/logger"
	"github.com/harrison/docparser/internal/models"
)

const (
	// maxPromptContent caps how much document text goes into a prompt.
	maxPromptContent = 4000

	// summaryMaxChars is the requested summary length in characters.
	summaryMaxChars = 200

	summaryTokens  = 60
	documentTokens = 150
	projectTokens  = 200
	crossTokens    = 250
)

// Analyzer produces enrichments for documents, projects, and the whole
// portfolio. Provider failures degrade to basic analysis; a disabled
// analyzer marks every slot SourceNone. Enrichment never returns an error.
type Analyzer struct {
	gateway *Gateway
	enabled bool
	log     logger.Logger
}

// NewAnalyzer creates an Analyzer over the gateway. When enabled is false
// every enrichment is a SourceNone marker and no provider is contacted.
func NewAnalyzer(gateway *Gateway, enabled bool, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Analyzer{gateway: gateway, enabled: enabled, log: log}
}

// Available reports whether any provider is usable.
func (a *Analyzer) Available() bool {
	return a.gateway.Available()
}

// truncate caps content for prompt inclusion.
func truncate(content string, limit int) string {
	if len(content) > limit {
		return content[:limit] + "..."
	}
	return content
}

// complete runs a prompt through the chain and wraps the outcome as an
// Enrichment, falling back to the supplied basic text on any failure.
func (a *Analyzer) complete(ctx context.Context, prompt string, maxTokens int, basic string) models.Enrichment {
	text, provider, err := a.gateway.Complete(ctx, prompt, maxTokens)
	if err != nil {
		a.log.LogDebug(fmt.Sprintf("Falling back to basic analysis: %v", err))
		return models.Enrichment{Text: basic, Source: models.SourceBasic}
	}
	return models.Enrichment{Text: text, Source: models.SourceProvider, Provider: provider}
}

// SummarizeDocument produces a short summary of the content, with the
// owning project named in the prompt when known.
func (a *Analyzer) SummarizeDocument(ctx context.Context, content, project string) models.Enrichment {
	if !a.enabled {
		return models.Enrichment{Source: models.SourceNone}
	}
	if len(strings.TrimSpace(content)) < 50 {
		return models.Enrichment{Text: BasicSummary(content, summaryMaxChars), Source: models.SourceBasic}
	}

	contextInfo := ""
	if project != "" {
		contextInfo = fmt.Sprintf("\nProject Context: This document belongs to the '%s' project. ", project)
	}

	prompt := fmt.Sprintf(`Please provide a concise summary of the following content in %d characters or less:%s

%s

Summary:`, summaryMaxChars, contextInfo, truncate(content, maxPromptContent))

	return a.complete(ctx, prompt, summaryTokens, BasicSummary(content, summaryMaxChars))
}

// AnalyzeDocument produces per-document insights: type and purpose, key
// topics, structure, notable characteristics.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, content, filename, project, subfolder string) models.Enrichment {
	if !a.enabled {
		return models.Enrichment{Source: models.SourceNone}
	}
	if len(strings.TrimSpace(content)) < 20 {
		return models.Enrichment{Text: BasicDocumentAnalysis(content, filename), Source: models.SourceBasic}
	}

	contextInfo := ""
	if project != "" {
		contextInfo = fmt.Sprintf("\nProject Context: This document belongs to the '%s' project", project)
		if subfolder != "" {
			contextInfo += fmt.Sprintf(" in the '%s' section", subfolder)
		}
		contextInfo += ". "
	}

	prompt := fmt.Sprintf(`Analyze the following document content from file "%s" and provide insights about:
1. Document type and purpose
2. Key topics or themes
3. Structure and organization
4. Notable characteristics%s

Content:
%s

Analysis:`, filename, contextInfo, truncate(content, maxPromptContent))

	return a.complete(ctx, prompt, documentTokens, BasicDocumentAnalysis(content, filename))
}

// AnalyzeProject produces a project-level assessment from rollup stats.
func (a *Analyzer) AnalyzeProject(ctx context.Context, rollup *models.ProjectRollup) models.Enrichment {
	if !a.enabled {
		return models.Enrichment{Source: models.SourceNone}
	}

	formats := make([]string, 0, len(rollup.Formats))
	for f := range rollup.Formats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	structure := "root level only"
	if len(rollup.Subfolders) > 0 {
		structure = fmt.Sprintf("%d subfolders: %s", len(rollup.Subfolders), strings.Join(rollup.Subfolders, ", "))
	}

	prompt := fmt.Sprintf(`Analyze the following project and provide insights:

Project: %s
Files: %d files (%s)
Structure: %s

Based on the project structure and file types, provide:
1. Project purpose and scope assessment
2. Documentation quality and organization
3. Potential gaps or recommendations
4. Overall project characteristics

Analysis:`, rollup.Name, rollup.FileCount, strings.Join(formats, ", "), structure)

	return a.complete(ctx, prompt, projectTokens, BasicProjectAnalysis(rollup))
}

// AnalyzeCrossProject produces the portfolio-level comparison across all
// project rollups.
func (a *Analyzer) AnalyzeCrossProject(ctx context.Context, rollups map[string]*models.ProjectRollup) models.Enrichment {
	if !a.enabled {
		return models.Enrichment{Source: models.SourceNone}
	}

	names := make([]string, 0, len(rollups))
	for n := range rollups {
		names = append(names, n)
	}
	// Deterministic prompt ordering keeps runs reproducible.
	sort.Strings(names)

	var lines []string
	totalFiles := 0
	for _, name := range names {
		r := rollups[name]
		totalFiles += r.FileCount
		formats := make([]string, 0, len(r.Formats))
		for f := range r.Formats {
			formats = append(formats, f)
		}
		sort.Strings(formats)
		lines = append(lines, fmt.Sprintf("- %s: %d files, %d sections, types: %s",
			name, r.FileCount, len(r.Subfolders), strings.Join(formats, ", ")))
	}

	prompt := fmt.Sprintf(`Perform cross-project analysis of the following projects:

Projects Overview:
%s

Total: %d projects, %d files

Provide insights on:
1. Project similarities and differences
2. Documentation patterns across projects
3. Potential standardization opportunities
4. Cross-project relationships or dependencies
5. Overall portfolio assessment

Cross-Project Analysis:`, strings.Join(lines, "\n"), len(rollups), totalFiles)

	return a.complete(ctx, prompt, crossTokens, BasicCrossAnalysis(len(rollups), totalFiles))
}
