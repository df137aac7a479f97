// Package cmd wires the docparser CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for docparser
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docparser",
		Short: "Project-aware document analysis pipeline",
		Long: `DocParser scans a directory tree, groups documents into projects by
directory structure, extracts text from supported formats, and generates
markdown reports with optional AI-powered summaries and insights.

AI enrichment runs through a provider fallback chain (OpenAI, Anthropic,
Gemini, Replicate, Ollama); when no provider is usable the run degrades
to deterministic basic analysis instead of failing.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewProvidersCommand())

	return cmd
}
