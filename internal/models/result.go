package models

import (
	"sort"
	"time"
)

// AISource identifies where an AI-shaped result came from.
type AISource string

const (
	// SourceProvider marks a result produced by a real AI provider.
	SourceProvider AISource = "provider"

	// SourceBasic marks a deterministic rule-based fallback result.
	SourceBasic AISource = "basic"

	// SourceNone marks a slot where AI enrichment was not requested.
	SourceNone AISource = "none"
)

// Enrichment holds the AI (or basic-analysis) output for one subject.
type Enrichment struct {
	// Text is the summary or analysis body.
	Text string

	// Source records whether a provider or the basic fallback produced it.
	Source AISource

	// Provider is the provider identifier when Source is SourceProvider.
	Provider string
}

// Degraded reports whether this enrichment fell back to basic analysis.
func (e Enrichment) Degraded() bool {
	return e.Source == SourceBasic
}

// FileResult is the per-file outcome of analysis. Every FileRecord in a
// run has exactly one FileResult, success or failure.
type FileResult struct {
	Record FileRecord

	// Preview is the first part of the extracted text.
	Preview string

	// WordCount counts whitespace-separated words in the extracted text.
	WordCount int

	// Metadata is the extractor's format-specific metadata.
	Metadata map[string]string

	// Summary is the document summary (AI or basic).
	Summary Enrichment

	// Insights is the document-level analysis (AI or basic).
	Insights Enrichment

	// Err is non-nil when extraction failed; the file is marked failed
	// but the run continues.
	Err error
}

// Failed reports whether extraction failed for this file.
func (fr *FileResult) Failed() bool {
	return fr.Err != nil
}

// ProjectRollup aggregates per-project statistics, recomputed
// incrementally as files complete.
type ProjectRollup struct {
	Name       string
	FileCount  int
	TotalSize  int64
	Formats    map[string]int
	Subfolders []string
	Extracted  int
	Failed     int
	TotalWords int
	Analysis   Enrichment
}

// CrossRollup aggregates statistics across every project group. It is
// computed only after all project rollups are final.
type CrossRollup struct {
	ProjectCount int
	FileCount    int
	TotalSize    int64
	Formats      map[string]int
	Extracted    int
	Failed       int
	Analysis     Enrichment
}

// AnalysisResult is the complete output of one orchestrator run. It is
// fully populated before report generation: every file has a result and
// every enrichment slot holds either provider output, basic analysis, or
// an explicit SourceNone marker.
type AnalysisResult struct {
	Session Session
	Scan    *ScanResult

	// Files holds one result per FileRecord, keyed by absolute path.
	Files map[string]*FileResult

	// Projects holds one rollup per detected project group.
	Projects map[string]*ProjectRollup

	Cross CrossRollup

	// AIEnabled records whether enrichment was requested for this run.
	AIEnabled bool

	// AIAvailable records whether any provider was usable at run start.
	AIAvailable bool

	// Duration is the wall time of the analysis phase.
	Duration time.Duration
}

// FileResults returns all per-file results sorted by path for
// deterministic report ordering.
func (ar *AnalysisResult) FileResults() []*FileResult {
	paths := make([]string, 0, len(ar.Files))
	for p := range ar.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]*FileResult, 0, len(paths))
	for _, p := range paths {
		out = append(out, ar.Files[p])
	}
	return out
}

// ProjectNames returns the rollup names in sorted order.
func (ar *AnalysisResult) ProjectNames() []string {
	names := make([]string, 0, len(ar.Projects))
	for n := range ar.Projects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Counts returns extracted, failed, and AI-degraded totals across all files.
func (ar *AnalysisResult) Counts() (extracted, failed, degraded int) {
	for _, fr := range ar.Files {
		if fr.Failed() {
			failed++
			continue
		}
		extracted++
		if fr.Summary.Degraded() || fr.Insights.Degraded() {
			degraded++
		}
	}
	return extracted, failed, degraded
}
