package models

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSessionNaming(t *testing.T) {
	s := Session{
		RunID:   "test-run",
		Name:    "Docs",
		Started: time.Date(2026, 8, 23, 14, 30, 45, 0, time.UTC),
	}

	if got := s.DirName(); got != "Docs_23_08_26_14_30" {
		t.Errorf("DirName() = %q", got)
	}
	if got := s.Stamp(); got != "20260823_143045" {
		t.Errorf("Stamp() = %q", got)
	}
}

func TestNewSessionUsesBaseName(t *testing.T) {
	s := NewSession("/home/user/My Documents")
	if s.Name != "My Documents" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.RunID == "" {
		t.Error("RunID must be set")
	}
}

func TestErrorPredicates(t *testing.T) {
	cfgErr := NewConfigError("workers", "must be >= 1", nil)
	if !IsConfigError(cfgErr) {
		t.Error("IsConfigError(ConfigError) = false")
	}
	if !IsConfigError(fmt.Errorf("wrapped: %w", cfgErr)) {
		t.Error("IsConfigError must see through wrapping")
	}
	if IsConfigError(errors.New("plain")) {
		t.Error("IsConfigError(plain) = true")
	}

	extErr := &ExtractionError{Path: "a.txt", Format: ".txt", Err: errors.New("boom")}
	if !IsExtractionError(extErr) {
		t.Error("IsExtractionError(ExtractionError) = false")
	}

	transient := NewProviderError("openai", ProviderTransient, "429", nil)
	permanent := NewProviderError("openai", ProviderPermanent, "401", nil)
	if !IsTransient(transient) {
		t.Error("IsTransient(transient) = false")
	}
	if IsTransient(permanent) {
		t.Error("IsTransient(permanent) = true")
	}
	if IsTransient(errors.New("plain")) {
		t.Error("IsTransient(plain) = true")
	}
}

func TestEnrichmentDegraded(t *testing.T) {
	if (Enrichment{Source: SourceProvider, Provider: "openai"}).Degraded() {
		t.Error("provider enrichment is not degraded")
	}
	if !(Enrichment{Source: SourceBasic}).Degraded() {
		t.Error("basic enrichment is degraded")
	}
	if (Enrichment{Source: SourceNone}).Degraded() {
		t.Error("skipped enrichment is not degraded")
	}
}

func TestAnalysisResultCounts(t *testing.T) {
	result := &AnalysisResult{
		Files: map[string]*FileResult{
			"a": {Summary: Enrichment{Source: SourceProvider}},
			"b": {Summary: Enrichment{Source: SourceBasic}},
			"c": {Err: errors.New("broken")},
		},
	}

	extracted, failed, degraded := result.Counts()
	if extracted != 2 || failed != 1 || degraded != 1 {
		t.Errorf("Counts() = %d, %d, %d", extracted, failed, degraded)
	}
}

func TestFileResultsSorted(t *testing.T) {
	result := &AnalysisResult{
		Files: map[string]*FileResult{
			"z/file.txt": {Record: FileRecord{Path: "z/file.txt"}},
			"a/file.txt": {Record: FileRecord{Path: "a/file.txt"}},
			"m/file.txt": {Record: FileRecord{Path: "m/file.txt"}},
		},
	}

	sorted := result.FileResults()
	if len(sorted) != 3 {
		t.Fatalf("got %d results", len(sorted))
	}
	if sorted[0].Record.Path != "a/file.txt" || sorted[2].Record.Path != "z/file.txt" {
		t.Errorf("not sorted by path: %v", sorted)
	}
}

func TestProjectGroupStats(t *testing.T) {
	g := ProjectGroup{
		Name: "Alpha",
		Files: []FileRecord{
			{Path: "a.txt", Extension: ".txt", Size: 100, Subfolder: ""},
			{Path: "b.txt", Extension: ".txt", Size: 200, Subfolder: "specs"},
			{Path: "c.md", Extension: ".md", Size: 50, Subfolder: "specs"},
		},
	}

	if g.FileCount() != 3 {
		t.Errorf("FileCount() = %d", g.FileCount())
	}
	if g.TotalSize() != 350 {
		t.Errorf("TotalSize() = %d", g.TotalSize())
	}
	hist := g.FormatHistogram()
	if hist[".txt"] != 2 || hist[".md"] != 1 {
		t.Errorf("FormatHistogram() = %v", hist)
	}
	subs := g.Subfolders()
	if len(subs) != 1 || subs[0] != "specs" {
		t.Errorf("Subfolders() = %v", subs)
	}
}
