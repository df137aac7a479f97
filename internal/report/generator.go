// Package report renders analysis results into markdown reports inside a
// timestamped session directory. Each report file is written atomically;
// a failed write is fatal for that file only.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/harrison/docparser/internal/filelock"
	"github.com/harrison/docparser/internal/logger"
	"github.com/harrison/docparser/internal/models"
)

// DefaultOutputDir is where session directories are created.
const DefaultOutputDir = "Reports"

// Options configures a Generator.
type Options struct {
	// OutputDir is the base directory for session output. Empty uses
	// DefaultOutputDir.
	OutputDir string

	Logger logger.Logger
}

// Generator writes the four report variants for a run.
type Generator struct {
	outputDir string
	log       logger.Logger
}

// New creates a Generator.
func New(opts Options) *Generator {
	dir := opts.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Generator{outputDir: dir, log: log}
}

// SessionDir returns the output directory for the given session.
func (g *Generator) SessionDir(session models.Session) string {
	return filepath.Join(g.outputDir, session.DirName())
}

// Generate writes the comprehensive, overview, cross-project, and
// per-project reports. Write failures are collected as ReportWriteErrors
// and returned; the remaining reports are still attempted. The session
// directory path is returned even on partial failure.
func (g *Generator) Generate(result *models.AnalysisResult) (string, []error) {
	sessionDir := g.SessionDir(result.Session)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return sessionDir, []error{&models.ReportWriteError{Path: sessionDir, Err: err}}
	}
	g.log.LogInfo(fmt.Sprintf("Writing reports to %s", sessionDir))

	name := result.Session.Name
	stamp := result.Session.Stamp()

	var errs []error
	write := func(filename, content string) {
		path := filepath.Join(sessionDir, filename)
		if err := filelock.AtomicWrite(path, []byte(content)); err != nil {
			g.log.LogError(fmt.Sprintf("Failed to write %s: %v", filename, err))
			errs = append(errs, &models.ReportWriteError{Path: path, Err: err})
			return
		}
		g.log.LogInfo(fmt.Sprintf("Report saved: %s", filename))
	}

	write(fmt.Sprintf("%s_COMPREHENSIVE_%s.md", name, stamp), g.comprehensive(result))
	write(fmt.Sprintf("%s_OVERVIEW_%s.md", name, stamp), g.overview(result))
	write(fmt.Sprintf("%s_CROSS_PROJECT_%s.md", name, stamp), g.crossProject(result))

	for _, projectName := range result.ProjectNames() {
		filename := fmt.Sprintf("%s_PROJECT_%s_%s.md", name, sanitizeName(projectName), stamp)
		write(filename, g.project(result, projectName))
	}

	return sessionDir, errs
}

// sanitizeName makes a project name safe for use in a filename.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}

func enrichmentText(e models.Enrichment) string {
	if e.Source == models.SourceNone {
		return "_AI analysis skipped (not requested for this run)._"
	}
	return e.Text
}

func generatedAt(result *models.AnalysisResult) string {
	return result.Session.Started.Format("2006-01-02 15:04:05")
}

func analysisMode(result *models.AnalysisResult) string {
	switch {
	case !result.AIEnabled:
		return "Standard"
	case result.AIAvailable:
		return "AI-Enhanced"
	default:
		return "Basic (AI unavailable)"
	}
}

func formatSize(n int64) string {
	return humanize.Bytes(uint64(n))
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

// fileDetails renders the per-document block shared by the comprehensive
// and project reports.
func fileDetails(sb *strings.Builder, fr *models.FileResult) {
	fmt.Fprintf(sb, "#### %s\n", fr.Record.Name)
	fmt.Fprintf(sb, "**Location:** `%s`  \n", fr.Record.RelPath)
	fmt.Fprintf(sb, "**Type:** %s  \n", strings.ToUpper(strings.TrimPrefix(fr.Record.Extension, ".")))
	fmt.Fprintf(sb, "**Size:** %s  \n", formatSize(fr.Record.Size))
	fmt.Fprintf(sb, "**Words:** %s\n\n", formatCount(fr.WordCount))

	if fr.Summary.Source != models.SourceNone && fr.Summary.Text != "" {
		fmt.Fprintf(sb, "**Summary:** %s\n\n", fr.Summary.Text)
	}
	if fr.Insights.Source != models.SourceNone && fr.Insights.Text != "" {
		fmt.Fprintf(sb, "**Analysis:** %s\n\n", fr.Insights.Text)
	}
	sb.WriteString("---\n\n")
}

// comprehensive renders the full per-document report organized by project.
func (g *Generator) comprehensive(result *models.AnalysisResult) string {
	var sb strings.Builder

	totalWords := 0
	for _, fr := range result.Files {
		totalWords += fr.WordCount
	}

	fmt.Fprintf(&sb, "# Comprehensive Document Analysis Report\n## %s\n\n", result.Session.Name)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", generatedAt(result))
	fmt.Fprintf(&sb, "**Analysis Mode:** %s  \n", analysisMode(result))
	fmt.Fprintf(&sb, "**Directory:** `%s`\n\n---\n\n", result.Scan.Root)

	fmt.Fprintf(&sb, "## Executive Summary\n\n")
	fmt.Fprintf(&sb, "This comprehensive analysis covers **%d projects** containing **%d documents** with a total of **%s words**.\n\n",
		len(result.Projects), len(result.Files), formatCount(totalWords))

	sb.WriteString("### Projects Overview\n")
	for _, name := range result.ProjectNames() {
		r := result.Projects[name]
		fmt.Fprintf(&sb, "\n- **%s:** %d files, %d sections\n", name, r.FileCount, len(r.Subfolders))
	}
	sb.WriteString("\n---\n\n")

	for _, name := range result.ProjectNames() {
		rollup := result.Projects[name]
		fmt.Fprintf(&sb, "## Project: %s\n\n", name)
		fmt.Fprintf(&sb, "**Files:** %d  \n", rollup.FileCount)
		fmt.Fprintf(&sb, "**Sections:** %s  \n", sectionsLine(rollup.Subfolders))
		fmt.Fprintf(&sb, "**File Types:** %s\n\n", formatsLine(rollup.Formats))

		fmt.Fprintf(&sb, "%s\n\n", enrichmentText(rollup.Analysis))

		fmt.Fprintf(&sb, "### Documents in %s\n\n", name)
		for _, fr := range result.FileResults() {
			if fr.Record.Project != name || fr.Failed() {
				continue
			}
			fileDetails(&sb, fr)
		}
	}

	if unassigned := g.unassignedResults(result); len(unassigned) > 0 {
		sb.WriteString("## Unassigned Documents\n\n")
		sb.WriteString("Files above the project detection level, analyzed individually.\n\n")
		for _, fr := range unassigned {
			if fr.Failed() {
				continue
			}
			fileDetails(&sb, fr)
		}
	}

	sb.WriteString(g.technicalAppendix(result))
	return sb.String()
}

// overview renders the portfolio summary report.
func (g *Generator) overview(result *models.AnalysisResult) string {
	var sb strings.Builder

	totalWords := 0
	extensions := map[string]bool{}
	for _, fr := range result.Files {
		totalWords += fr.WordCount
		extensions[fr.Record.Extension] = true
	}

	fmt.Fprintf(&sb, "# Portfolio Overview Report\n## %s\n\n", result.Session.Name)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", generatedAt(result))
	fmt.Fprintf(&sb, "**Directory:** `%s`\n\n---\n\n", result.Scan.Root)

	sb.WriteString("## Portfolio Summary\n\n### Quick Stats\n")
	fmt.Fprintf(&sb, "- **Projects:** %d\n", len(result.Projects))
	fmt.Fprintf(&sb, "- **Total Documents:** %d\n", len(result.Files))
	fmt.Fprintf(&sb, "- **Total Words:** %s\n", formatCount(totalWords))
	fmt.Fprintf(&sb, "- **Total Size:** %s\n", formatSize(result.Scan.TotalSize()))
	fmt.Fprintf(&sb, "- **File Types:** %d\n\n", len(extensions))

	sb.WriteString("### Project Breakdown\n")
	for _, name := range result.ProjectNames() {
		rollup := result.Projects[name]
		fmt.Fprintf(&sb, "\n#### %s\n", name)
		fmt.Fprintf(&sb, "- **Documents:** %d\n", rollup.FileCount)
		fmt.Fprintf(&sb, "- **Sections:** %d\n", len(rollup.Subfolders))
		fmt.Fprintf(&sb, "- **Word Count:** %s\n", formatCount(rollup.TotalWords))
		fmt.Fprintf(&sb, "- **File Types:** %s\n", formatsLine(rollup.Formats))
	}

	sb.WriteString("\n---\n\n## Cross-Project Analysis\n\n")
	fmt.Fprintf(&sb, "%s\n", enrichmentText(result.Cross.Analysis))

	return sb.String()
}

// project renders the standalone report for one project.
func (g *Generator) project(result *models.AnalysisResult, name string) string {
	rollup := result.Projects[name]
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Project Report: %s\n\n", name)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", generatedAt(result))
	fmt.Fprintf(&sb, "**Parent Directory:** `%s`\n\n---\n\n", result.Scan.Root)

	sb.WriteString("## Project Overview\n\n")
	fmt.Fprintf(&sb, "**Files:** %d  \n", rollup.FileCount)
	fmt.Fprintf(&sb, "**Sections:** %s  \n", sectionsLine(rollup.Subfolders))
	fmt.Fprintf(&sb, "**File Types:** %s  \n", formatsLine(rollup.Formats))
	fmt.Fprintf(&sb, "**Total Size:** %s  \n", formatSize(rollup.TotalSize))
	fmt.Fprintf(&sb, "**Total Words:** %s\n\n", formatCount(rollup.TotalWords))

	sb.WriteString("## Project Analysis\n\n")
	fmt.Fprintf(&sb, "%s\n\n", enrichmentText(rollup.Analysis))

	sb.WriteString("## Document Details\n\n")

	// Group documents by subfolder, root first.
	bySubfolder := map[string][]*models.FileResult{}
	for _, fr := range result.FileResults() {
		if fr.Record.Project != name {
			continue
		}
		key := fr.Record.Subfolder
		if key == "" {
			key = "root"
		}
		bySubfolder[key] = append(bySubfolder[key], fr)
	}

	sections := make([]string, 0, len(bySubfolder))
	if _, ok := bySubfolder["root"]; ok {
		sections = append(sections, "root")
	}
	for _, sub := range rollup.Subfolders {
		if _, ok := bySubfolder[sub]; ok {
			sections = append(sections, sub)
		}
	}

	for _, section := range sections {
		fmt.Fprintf(&sb, "### %s Section\n\n", section)
		for _, fr := range bySubfolder[section] {
			if fr.Failed() {
				fmt.Fprintf(&sb, "#### %s (extraction failed)\n**Error:** %v\n\n---\n\n", fr.Record.Name, fr.Err)
				continue
			}
			fileDetails(&sb, fr)
		}
	}

	return sb.String()
}

// crossProject renders the portfolio comparison report.
func (g *Generator) crossProject(result *models.AnalysisResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Cross-Project Analysis Report\n## %s\n\n", result.Session.Name)
	fmt.Fprintf(&sb, "**Generated:** %s  \n", generatedAt(result))
	fmt.Fprintf(&sb, "**Directory:** `%s`\n\n---\n\n", result.Scan.Root)

	fmt.Fprintf(&sb, "## Portfolio Analysis\n\nThis report analyzes patterns, relationships, and insights across all %d projects in the portfolio.\n\n",
		len(result.Projects))
	fmt.Fprintf(&sb, "%s\n", enrichmentText(result.Cross.Analysis))

	sb.WriteString("\n## Comparative Analysis\n\n### Project Size Comparison\n\n")
	for _, name := range namesByFileCount(result) {
		fmt.Fprintf(&sb, "- **%s:** %d files\n", name, result.Projects[name].FileCount)
	}

	sb.WriteString("\n### File Type Distribution\n\n")
	for _, ext := range extensionsByCount(result.Cross.Formats) {
		fmt.Fprintf(&sb, "- **%s:** %d files\n",
			strings.ToUpper(strings.TrimPrefix(ext, ".")), result.Cross.Formats[ext])
	}

	return sb.String()
}

// unassignedResults returns the results for files outside any project,
// sorted by path.
func (g *Generator) unassignedResults(result *models.AnalysisResult) []*models.FileResult {
	var out []*models.FileResult
	for _, fr := range result.FileResults() {
		if fr.Record.Project == "" {
			out = append(out, fr)
		}
	}
	return out
}

// technicalAppendix lists failures and scan issues at the end of the
// comprehensive report.
func (g *Generator) technicalAppendix(result *models.AnalysisResult) string {
	var sb strings.Builder
	sb.WriteString("## Technical Appendix\n\n")

	extracted, failed, degraded := result.Counts()
	fmt.Fprintf(&sb, "- **Extracted:** %d\n", extracted)
	fmt.Fprintf(&sb, "- **Failed:** %d\n", failed)
	fmt.Fprintf(&sb, "- **Degraded to basic analysis:** %d\n", degraded)
	fmt.Fprintf(&sb, "- **Unsupported files skipped:** %d\n", result.Scan.Unsupported)
	fmt.Fprintf(&sb, "- **Analysis duration:** %s\n\n", logger.FormatDuration(result.Duration))

	if failed > 0 {
		sb.WriteString("### Extraction Failures\n\n")
		for _, fr := range result.FileResults() {
			if fr.Failed() {
				fmt.Fprintf(&sb, "- `%s`: %v\n", fr.Record.RelPath, fr.Err)
			}
		}
		sb.WriteString("\n")
	}

	if len(result.Scan.Errors) > 0 {
		sb.WriteString("### Scan Issues\n\n")
		for _, issue := range result.Scan.Errors {
			fmt.Fprintf(&sb, "- `%s`: %s\n", issue.Path, issue.Reason)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func sectionsLine(subfolders []string) string {
	if len(subfolders) == 0 {
		return "root"
	}
	return strings.Join(subfolders, ", ")
}

func formatsLine(formats map[string]int) string {
	exts := extensionsByCount(formats)
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%s(%d)", strings.ToUpper(strings.TrimPrefix(ext, ".")), formats[ext]))
	}
	return strings.Join(parts, ", ")
}

// namesByFileCount returns project names sorted by file count descending,
// name ascending on ties.
func namesByFileCount(result *models.AnalysisResult) []string {
	names := result.ProjectNames()
	sort.SliceStable(names, func(i, j int) bool {
		return result.Projects[names[i]].FileCount > result.Projects[names[j]].FileCount
	})
	return names
}

// extensionsByCount returns extensions sorted by count descending, name
// ascending on ties.
func extensionsByCount(formats map[string]int) []string {
	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	sort.SliceStable(exts, func(i, j int) bool {
		return formats[exts[i]] > formats[exts[j]]
	})
	return exts
}
