// Package analyzer orchestrates a full analysis run: extraction across
// every scanned file, per-document AI enrichment, then project and
// cross-project rollups. Per-file failures are absorbed; the run always
// produces a complete result unless the context is cancelled.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harrison/docparser/internal/ai"
	"github.com/harrison/docparser/internal/extractor"
	"github.com/harrison/docparser/internal/logger"
	"github.com/harrison/docparser/internal/models"
)

// previewChars is how much extracted text is kept as the file preview.
const previewChars = 500

// Options configures an Orchestrator.
type Options struct {
	Registry *extractor.Registry
	Analyzer *ai.Analyzer

	// Workers bounds concurrent per-file processing. Values below 1 are
	// treated as 1 (sequential).
	Workers int

	Logger logger.Logger
}

// Orchestrator runs the analysis pipeline over a scan result.
type Orchestrator struct {
	registry *extractor.Registry
	analyzer *ai.Analyzer
	workers  int
	log      logger.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Orchestrator{
		registry: opts.Registry,
		analyzer: opts.Analyzer,
		workers:  workers,
		log:      log,
	}
}

// Run executes the pipeline: every scanned file (assigned and unassigned)
// is extracted and enriched, then project rollups are computed, then the
// cross-project rollup. Extraction and provider failures never abort the
// run; only context cancellation returns an error, with the partial
// result alongside it.
func (o *Orchestrator) Run(ctx context.Context, session models.Session, scan *models.ScanResult, aiEnabled bool) (*models.AnalysisResult, error) {
	start := time.Now()

	result := &models.AnalysisResult{
		Session:     session,
		Scan:        scan,
		Files:       make(map[string]*models.FileResult),
		Projects:    make(map[string]*models.ProjectRollup),
		AIEnabled:   aiEnabled,
		AIAvailable: o.analyzer.Available(),
	}

	if aiEnabled && !result.AIAvailable {
		o.log.LogWarn("AI enrichment requested but no provider is usable; using basic analysis")
	}

	all := make([]models.FileRecord, 0, len(scan.Files)+len(scan.Unassigned))
	all = append(all, scan.Files...)
	all = append(all, scan.Unassigned...)

	o.log.LogInfo(fmt.Sprintf("Analyzing %d files with %d worker(s)", len(all), o.workers))

	if err := o.processFiles(ctx, all, result); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	for i := range scan.Projects {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		group := &scan.Projects[i]
		result.Projects[group.Name] = o.rollupProject(ctx, group, result)
	}

	result.Cross = o.rollupCross(ctx, result)
	result.Duration = time.Since(start)

	extracted, failed, degraded := result.Counts()
	o.log.LogInfo(fmt.Sprintf("Analysis complete in %s: %d extracted, %d failed, %d degraded to basic analysis",
		logger.FormatDuration(result.Duration), extracted, failed, degraded))

	return result, nil
}

// processFiles runs per-file extraction and enrichment on a bounded pool.
// Results land in the map keyed by absolute path, so aggregation order
// never depends on completion order.
func (o *Orchestrator) processFiles(ctx context.Context, files []models.FileRecord, result *models.AnalysisResult) error {
	jobs := make(chan models.FileRecord)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				// A cancelled run drains the queue without working it.
				if ctx.Err() != nil {
					continue
				}
				fr := o.processFile(ctx, rec)
				mu.Lock()
				result.Files[rec.Path] = fr
				mu.Unlock()
			}
		}()
	}

	for _, rec := range files {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}

// processFile extracts one file and attaches its enrichments. Extraction
// failure marks the result failed; enrichment never fails.
func (o *Orchestrator) processFile(ctx context.Context, rec models.FileRecord) *models.FileResult {
	fr := &models.FileResult{Record: rec}

	ex, err := o.registry.Extract(rec.Path)
	if err != nil {
		o.log.LogWarn(fmt.Sprintf("Extraction failed for %s: %v", rec.RelPath, err))
		fr.Err = err
		return fr
	}

	fr.Preview = preview(ex.Text)
	fr.WordCount = len(strings.Fields(ex.Text))
	fr.Metadata = ex.Metadata

	fr.Summary = o.analyzer.SummarizeDocument(ctx, ex.Text, rec.Project)
	fr.Insights = o.analyzer.AnalyzeDocument(ctx, ex.Text, rec.Name, rec.Project, rec.Subfolder)

	o.log.LogDebug(fmt.Sprintf("Processed %s (%d words)", rec.RelPath, fr.WordCount))
	return fr
}

// rollupProject aggregates one project group's statistics from the
// already-final per-file results, then runs the project-level analysis.
func (o *Orchestrator) rollupProject(ctx context.Context, group *models.ProjectGroup, result *models.AnalysisResult) *models.ProjectRollup {
	rollup := &models.ProjectRollup{
		Name:       group.Name,
		FileCount:  group.FileCount(),
		TotalSize:  group.TotalSize(),
		Formats:    group.FormatHistogram(),
		Subfolders: group.Subfolders(),
	}

	for _, f := range group.Files {
		fr, ok := result.Files[f.Path]
		if !ok {
			continue
		}
		if fr.Failed() {
			rollup.Failed++
			continue
		}
		rollup.Extracted++
		rollup.TotalWords += fr.WordCount
	}

	rollup.Analysis = o.analyzer.AnalyzeProject(ctx, rollup)
	return rollup
}

// rollupCross aggregates across all project rollups. It runs strictly
// after every project rollup is final.
func (o *Orchestrator) rollupCross(ctx context.Context, result *models.AnalysisResult) models.CrossRollup {
	cross := models.CrossRollup{
		ProjectCount: len(result.Projects),
		Formats:      make(map[string]int),
	}

	for _, rollup := range result.Projects {
		cross.FileCount += rollup.FileCount
		cross.TotalSize += rollup.TotalSize
		cross.Extracted += rollup.Extracted
		cross.Failed += rollup.Failed
		for ext, n := range rollup.Formats {
			cross.Formats[ext] += n
		}
	}

	cross.Analysis = o.analyzer.AnalyzeCrossProject(ctx, result.Projects)
	return cross
}

func preview(text string) string {
	if len(text) > previewChars {
		return text[:previewChars] + "..."
	}
	return text
}
