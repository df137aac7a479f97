package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/docparser/internal/ai"
	"github.com/harrison/docparser/internal/analyzer"
	"github.com/harrison/docparser/internal/config"
	"github.com/harrison/docparser/internal/display"
	"github.com/harrison/docparser/internal/extractor"
	"github.com/harrison/docparser/internal/logger"
	"github.com/harrison/docparser/internal/models"
	"github.com/harrison/docparser/internal/report"
	"github.com/harrison/docparser/internal/scanner"
)

// defaultConfigFile is looked up in the working directory when --config
// is not given. A missing file means defaults.
const defaultConfigFile = "docparser.yaml"

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <directory>",
		Short: "Scan a directory and generate analysis reports",
		Long: `Scan the given directory, group documents into projects, extract text,
and write markdown reports into a timestamped session directory.

Configuration is loaded from docparser.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Standard analysis (no AI)
  docparser analyze ./Docs

  # AI-enhanced analysis with the configured provider chain
  docparser analyze --ai ./Docs

  # Group projects at the third directory level
  docparser analyze --level 3 ./Docs

  # Just list detected projects without analyzing
  docparser analyze --list-only ./Docs

  # Force a specific provider to the head of the chain
  docparser analyze --ai --provider anthropic ./Docs`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: docparser.yaml)")
	cmd.Flags().Bool("ai", false, "Enable AI-powered summaries and insights")
	cmd.Flags().String("provider", "", "Provider to attempt first (overrides config default)")
	cmd.Flags().Int("level", 0, "Project detection level (directory depth, default from config)")
	cmd.Flags().Int("workers", 0, "Concurrent file analysis workers (default from config)")
	cmd.Flags().Bool("verbose", false, "Show detailed progress (debug log level)")
	cmd.Flags().Bool("list-only", false, "List detected projects and exit without analyzing")
	cmd.Flags().Bool("no-summary", false, "Skip the console summary table")
	cmd.Flags().String("output-dir", report.DefaultOutputDir, "Base directory for report output")

	return cmd
}

// runAnalyze implements the analyze command logic
func runAnalyze(cmd *cobra.Command, args []string) error {
	root := args[0]

	// Load configuration from file
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigFile
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Build flag pointers for merge (only changed values)
	var providerPtr *string
	if cmd.Flags().Changed("provider") {
		provider, _ := cmd.Flags().GetString("provider")
		providerPtr = &provider
	}
	var levelPtr *int
	if cmd.Flags().Changed("level") {
		level, _ := cmd.Flags().GetInt("level")
		levelPtr = &level
	}
	var workersPtr *int
	if cmd.Flags().Changed("workers") {
		workers, _ := cmd.Flags().GetInt("workers")
		workersPtr = &workers
	}
	var logLevelPtr *string
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		debug := "debug"
		logLevelPtr = &debug
	}

	cfg.MergeWithFlags(providerPtr, levelPtr, logLevelPtr, workersPtr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	aiEnabled, _ := cmd.Flags().GetBool("ai")
	listOnly, _ := cmd.Flags().GetBool("list-only")
	noSummary, _ := cmd.Flags().GetBool("no-summary")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	console := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)
	printer := display.NewPrinter(cmd.OutOrStdout())

	// Scan
	registry := extractor.NewRegistry()
	s, err := scanner.New(scanner.Options{
		Extensions:     registry.Extensions(),
		DetectionLevel: cfg.Detection.Level,
		Logger:         console,
	})
	if err != nil {
		return err
	}
	scan, err := s.Scan(root)
	if err != nil {
		return err
	}

	if listOnly {
		printer.ScanTable(scan)
		return nil
	}

	if len(scan.Files) == 0 && len(scan.Unassigned) == 0 {
		printer.ScanTable(scan)
		fmt.Fprintln(cmd.OutOrStdout(), "No supported documents found; nothing to analyze.")
		return nil
	}

	session := models.NewSession(scan.Root)
	generator := report.New(report.Options{OutputDir: outputDir, Logger: console})
	sessionDir := generator.SessionDir(session)

	// The run log lives next to the reports it describes.
	fileLog, err := logger.NewFileLogger(filepath.Join(sessionDir, "docparser.log"), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create run log: %w", err)
	}
	defer fileLog.Close()

	log := logger.NewMultiLogger(console, fileLog)
	log.LogInfo(fmt.Sprintf("Run %s starting for %s", session.RunID, scan.Root))

	gateway, err := ai.NewGateway(cfg, log)
	if err != nil {
		return err
	}
	if aiEnabled && !gateway.Available() {
		log.LogWarn("No usable AI provider; summaries will use basic analysis")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := analyzer.New(analyzer.Options{
		Registry: registry,
		Analyzer: ai.NewAnalyzer(gateway, aiEnabled, log),
		Workers:  cfg.Workers,
		Logger:   log,
	})

	result, err := o.Run(ctx, session, scan, aiEnabled)
	if err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	// Report write failures are per-file; the run still succeeds.
	_, reportErrs := generator.Generate(result)
	for _, werr := range reportErrs {
		log.LogError(werr.Error())
	}

	if !noSummary {
		printer.ScanTable(scan)
		printer.Summary(result, sessionDir)
	}

	return nil
}
