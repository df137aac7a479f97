// Package display renders run output for the console: the project table,
// the post-run summary, and provider availability listings.
package display

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/harrison/docparser/internal/ai"
	"github.com/harrison/docparser/internal/logger"
	"github.com/harrison/docparser/internal/models"
)

// Printer writes human-facing run output. Color is used only when the
// writer is a terminal.
type Printer struct {
	out      io.Writer
	useColor bool
}

// NewPrinter creates a Printer for the given writer.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, useColor: writerIsTerminal(out)}
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) heading(text string) string {
	if p.useColor {
		return color.New(color.Bold, color.FgCyan).Sprint(text)
	}
	return text
}

func (p *Printer) good(text string) string {
	if p.useColor {
		return color.New(color.FgGreen).Sprint(text)
	}
	return text
}

func (p *Printer) bad(text string) string {
	if p.useColor {
		return color.New(color.FgRed).Sprint(text)
	}
	return text
}

func (p *Printer) newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(p.out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	return tbl
}

// ScanTable prints the detected projects with their file counts, sizes,
// and format mix. Used both for list-only mode and as the summary header.
func (p *Printer) ScanTable(scan *models.ScanResult) {
	fmt.Fprintf(p.out, "\n%s\n\n", p.heading("Detected Projects"))

	tbl := p.newTable()
	tbl.AppendHeader(table.Row{"Project", "Files", "Size", "Formats", "Sections"})

	for i := range scan.Projects {
		g := &scan.Projects[i]
		tbl.AppendRow(table.Row{
			g.Name,
			g.FileCount(),
			humanize.Bytes(uint64(g.TotalSize())),
			formatMix(g.FormatHistogram()),
			len(g.Subfolders()),
		})
	}
	tbl.AppendFooter(table.Row{
		"Total", len(scan.Files), humanize.Bytes(uint64(scan.TotalSize())), "", "",
	})
	tbl.Render()

	if len(scan.Unassigned) > 0 {
		fmt.Fprintf(p.out, "\n%d file(s) above the detection level (unassigned):\n", len(scan.Unassigned))
		for _, f := range scan.Unassigned {
			fmt.Fprintf(p.out, "  - %s\n", f.RelPath)
		}
	}
	if scan.Unsupported > 0 {
		fmt.Fprintf(p.out, "\n%d unsupported file(s) skipped.\n", scan.Unsupported)
	}
	if len(scan.Errors) > 0 {
		fmt.Fprintf(p.out, "%s\n", p.bad(fmt.Sprintf("%d path(s) could not be read.", len(scan.Errors))))
	}
}

// Summary prints the post-run result: outcome counts, AI mode, largest
// files, and where the reports were written.
func (p *Printer) Summary(result *models.AnalysisResult, sessionDir string) {
	extracted, failed, degraded := result.Counts()

	fmt.Fprintf(p.out, "\n%s\n\n", p.heading("Analysis Summary"))

	tbl := p.newTable()
	tbl.AppendRow(table.Row{"Documents analyzed", extracted})
	if failed > 0 {
		tbl.AppendRow(table.Row{"Extraction failures", p.bad(fmt.Sprint(failed))})
	} else {
		tbl.AppendRow(table.Row{"Extraction failures", 0})
	}
	tbl.AppendRow(table.Row{"Projects", len(result.Projects)})
	tbl.AppendRow(table.Row{"AI mode", p.aiMode(result, degraded)})
	tbl.AppendRow(table.Row{"Duration", logger.FormatDuration(result.Duration)})
	tbl.Render()

	p.LargestFiles(result.Scan, 5)

	fmt.Fprintf(p.out, "\nReports written to %s\n", p.good(sessionDir))
}

func (p *Printer) aiMode(result *models.AnalysisResult, degraded int) string {
	switch {
	case !result.AIEnabled:
		return "disabled"
	case !result.AIAvailable:
		return p.bad("unavailable (basic analysis used)")
	case degraded > 0:
		return fmt.Sprintf("enabled (%d file(s) degraded to basic)", degraded)
	default:
		return p.good("enabled")
	}
}

// LargestFiles prints the n largest scanned files.
func (p *Printer) LargestFiles(scan *models.ScanResult, n int) {
	files := make([]models.FileRecord, 0, len(scan.Files)+len(scan.Unassigned))
	files = append(files, scan.Files...)
	files = append(files, scan.Unassigned...)
	if len(files) == 0 {
		return
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Size > files[j].Size
	})
	if len(files) > n {
		files = files[:n]
	}

	fmt.Fprintf(p.out, "\n%s\n", p.heading("Largest Files"))
	for _, f := range files {
		fmt.Fprintf(p.out, "  %8s  %s\n", humanize.Bytes(uint64(f.Size)), f.RelPath)
	}
}

// Providers prints per-provider availability from gateway introspection.
func (p *Printer) Providers(statuses []ai.ProviderStatus, active string) {
	fmt.Fprintf(p.out, "\n%s\n\n", p.heading("AI Providers"))

	tbl := p.newTable()
	tbl.AppendHeader(table.Row{"Provider", "Enabled", "Credentialed", "Status"})

	for _, s := range statuses {
		status := "unusable"
		switch {
		case s.Name == active:
			status = p.good("active")
		case s.Usable:
			status = "standby"
		}
		name := s.Name
		if s.Default {
			name += " (default)"
		}
		tbl.AppendRow(table.Row{name, yesNo(s.Enabled), yesNo(s.Credentialed), status})
	}
	tbl.Render()

	if active == "" {
		fmt.Fprintf(p.out, "\n%s\n", p.bad("No usable provider; runs with --ai will use basic analysis."))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// formatMix renders a format histogram as "TXT(3), MD(1)" ordered by
// count descending.
func formatMix(formats map[string]int) string {
	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	sort.SliceStable(exts, func(i, j int) bool {
		return formats[exts[i]] > formats[exts[j]]
	})

	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%s(%d)", strings.ToUpper(strings.TrimPrefix(ext, ".")), formats[ext]))
	}
	return strings.Join(parts, ", ")
}
