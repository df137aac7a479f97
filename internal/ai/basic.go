package ai

import (
	"fmt"
	"strings"

	"github.com/harrison/docparser/internal/models"
)

// Basic analysis is the deterministic fallback used whenever the provider
// chain is exhausted or AI is unavailable. It never fails: any non-empty
// input yields a usable result.

// BasicSummary returns a rule-based summary: the first sentence of the
// content, truncated to maxLength characters.
func BasicSummary(content string, maxLength int) string {
	content = strings.TrimSpace(content)
	if len(content) < 50 {
		return "Content too short for meaningful summary"
	}

	flat := strings.ReplaceAll(content, "\n", " ")
	summary := flat
	if idx := strings.Index(flat, ". "); idx >= 0 {
		summary = flat[:idx+1]
	}
	if len(summary) > maxLength {
		summary = summary[:maxLength-3] + "..."
	}
	return summary
}

// BasicDocumentAnalysis returns rule-based insights for one document:
// size counts plus structural markers (tables, headings).
func BasicDocumentAnalysis(content, filename string) string {
	content = strings.TrimSpace(content)
	if len(content) < 20 {
		return "Content too short for analysis"
	}

	wordCount := len(strings.Fields(content))
	charCount := len(content)

	ext := "unknown"
	if idx := strings.LastIndex(filename, "."); idx >= 0 && idx < len(filename)-1 {
		ext = strings.ToLower(filename[idx+1:])
	}

	var sb strings.Builder
	sb.WriteString("Document Analysis (Basic):\n")
	fmt.Fprintf(&sb, "- File type: %s\n", strings.ToUpper(ext))
	fmt.Fprintf(&sb, "- Content length: %d characters, %d words\n", charCount, wordCount)

	if strings.Contains(strings.ToLower(content), "table") || strings.Contains(content, "|") {
		sb.WriteString("- Contains structured data (tables)\n")
	}
	for _, marker := range []string{"#", "Chapter", "Section"} {
		if strings.Contains(content, marker) {
			sb.WriteString("- Contains headings/sections\n")
			break
		}
	}

	sb.WriteString("\nNote: Full AI analysis requires API configuration")
	return sb.String()
}

// BasicProjectAnalysis returns a rule-based project summary from rollup
// statistics.
func BasicProjectAnalysis(rollup *models.ProjectRollup) string {
	return fmt.Sprintf("Project '%s' contains %d files across %d sections. Requires AI for detailed analysis.",
		rollup.Name, rollup.FileCount, len(rollup.Subfolders))
}

// BasicCrossAnalysis returns a rule-based cross-project summary.
func BasicCrossAnalysis(projectCount, fileCount int) string {
	return fmt.Sprintf("Cross-project analysis of %d projects with %d total files. Requires AI for detailed insights.",
		projectCount, fileCount)
}
