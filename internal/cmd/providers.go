package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/docparser/internal/ai"
	"github.com/harrison/docparser/internal/config"
	"github.com/harrison/docparser/internal/display"
)

// NewProvidersCommand creates the providers command
func NewProvidersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Show AI provider availability",
		Long: `List every configured AI provider with its enabled and credential
status, and show which provider the fallback chain would use first.

A provider is usable when it is enabled and its credential environment
variable is set (ollama needs no credential).`,
		Args: cobra.NoArgs,
		RunE: runProviders,
	}

	cmd.Flags().String("config", "", "Path to config file (default: docparser.yaml)")

	return cmd
}

// runProviders implements the providers command logic
func runProviders(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigFile
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gateway, err := ai.NewGateway(cfg, nil)
	if err != nil {
		return err
	}

	printer := display.NewPrinter(cmd.OutOrStdout())
	printer.Providers(gateway.Statuses(), gateway.Active())
	return nil
}
