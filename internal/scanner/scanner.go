// Package scanner walks a directory tree, classifies supported files, and
// groups them into projects by directory hierarchy.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/docparser/internal/logger"
	"github.com/harrison/docparser/internal/models"
)

// Options configures a directory scan.
type Options struct {
	// Extensions is the set of supported file extensions (with or
	// without the leading dot, any case).
	Extensions []string

	// DetectionLevel is the directory depth at which project boundaries
	// are drawn. Must be >= 1. Level 1 treats the whole root as a single
	// project; level 2 uses the root's immediate subdirectories.
	DetectionLevel int

	// Logger receives scan progress and per-path issues. Nil disables
	// logging.
	Logger logger.Logger
}

// Scanner performs project-aware directory scans. It has no state beyond
// its options; repeated scans of an unchanged tree yield identical results.
type Scanner struct {
	extensions map[string]bool
	level      int
	log        logger.Logger
}

// New creates a Scanner. Returns a ConfigError if the detection level is
// not a positive integer.
func New(opts Options) (*Scanner, error) {
	if opts.DetectionLevel < 1 {
		return nil, models.NewConfigError("project_detection.level",
			fmt.Sprintf("must be a positive integer, got %d", opts.DetectionLevel), nil)
	}

	extMap := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Scanner{extensions: extMap, level: opts.DetectionLevel, log: log}, nil
}

// Scan traverses the tree rooted at root and returns the classified
// files, project groups, and unassigned files. Per-path failures are
// recorded and traversal continues; only a missing or non-directory root
// is fatal.
func (s *Scanner) Scan(root string) (*models.ScanResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	result := &models.ScanResult{Root: absRoot}
	s.log.LogInfo(fmt.Sprintf("Starting project-aware scan of %s (detection level %d)", absRoot, s.level))

	// visited holds resolved directory paths on the current traversal
	// stack so symlink cycles are skipped, not followed.
	visited := make(map[string]bool)
	s.walk(absRoot, absRoot, visited, result)

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Unassigned, func(i, j int) bool {
		return result.Unassigned[i].Path < result.Unassigned[j].Path
	})

	result.Projects = groupProjects(result.Files)

	s.log.LogInfo(fmt.Sprintf("Scan complete: %d supported files across %d projects (%d unassigned, %d unsupported)",
		len(result.Files), len(result.Projects), len(result.Unassigned), result.Unsupported))

	return result, nil
}

// walk recursively descends dir, following directory symlinks at most once
// per traversal stack.
func (s *Scanner) walk(root, dir string, visited map[string]bool, result *models.ScanResult) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		result.Errors = append(result.Errors, models.ScanIssue{Path: dir, Reason: err.Error()})
		s.log.LogWarn(fmt.Sprintf("Skipping %s: %v", dir, err))
		return
	}
	if visited[resolved] {
		result.Errors = append(result.Errors, models.ScanIssue{Path: dir, Reason: "symlink cycle"})
		s.log.LogWarn(fmt.Sprintf("Skipping %s: symlink cycle", dir))
		return
	}
	visited[resolved] = true
	defer delete(visited, resolved)

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Errors = append(result.Errors, models.ScanIssue{Path: dir, Reason: err.Error()})
		s.log.LogWarn(fmt.Sprintf("Cannot read %s: %v", dir, err))
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			s.walk(root, path, visited, result)
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			// A symlinked entry may point at a directory.
			target, err := os.Stat(path)
			if err != nil {
				result.Errors = append(result.Errors, models.ScanIssue{Path: path, Reason: err.Error()})
				continue
			}
			if target.IsDir() {
				s.walk(root, path, visited, result)
				continue
			}
		}
		if !entry.Type().IsRegular() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !s.extensions[ext] {
			result.Unsupported++
			s.log.LogTrace(fmt.Sprintf("Unsupported: %s", path))
			continue
		}

		record, err := s.record(root, path, ext)
		if err != nil {
			result.Errors = append(result.Errors, models.ScanIssue{Path: path, Reason: err.Error()})
			s.log.LogWarn(fmt.Sprintf("Cannot stat %s: %v", path, err))
			continue
		}

		if record.Project == "" {
			result.Unassigned = append(result.Unassigned, record)
			s.log.LogDebug(fmt.Sprintf("Unassigned: %s", record.RelPath))
		} else {
			result.Files = append(result.Files, record)
			s.log.LogDebug(fmt.Sprintf("Found: %s (project %s)", record.RelPath, record.Project))
		}
	}
}

// record builds a FileRecord with project assignment for the file at path.
func (s *Scanner) record(root, path, ext string) (models.FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.FileRecord{}, err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return models.FileRecord{}, err
	}

	record := models.FileRecord{
		Path:      path,
		Name:      filepath.Base(path),
		Extension: ext,
		Size:      info.Size(),
		Modified:  info.ModTime(),
		RelPath:   filepath.ToSlash(rel),
	}

	parts := strings.Split(record.RelPath, "/")
	record.Project, record.Subfolder = assign(filepath.Base(root), parts, s.level)
	return record, nil
}

// assign maps a file's relative path parts to a project name and
// subfolder. A file with fewer parts than the detection level is
// unassigned (empty project). Level 1 places every file in a single
// project named after the root directory.
func assign(rootName string, parts []string, level int) (project, subfolder string) {
	if len(parts) < level {
		return "", ""
	}
	if level == 1 {
		return rootName, strings.Join(parts[:len(parts)-1], "/")
	}
	return parts[level-2], strings.Join(parts[level-1:len(parts)-1], "/")
}

// groupProjects builds sorted ProjectGroups from path-sorted records.
// Membership order within a group follows the input ordering, keeping
// groupings stable across runs on an unchanged tree.
func groupProjects(files []models.FileRecord) []models.ProjectGroup {
	byName := make(map[string]*models.ProjectGroup)
	var names []string
	for _, f := range files {
		g, ok := byName[f.Project]
		if !ok {
			g = &models.ProjectGroup{Name: f.Project}
			byName[f.Project] = g
			names = append(names, f.Project)
		}
		g.Files = append(g.Files, f)
	}
	sort.Strings(names)

	groups := make([]models.ProjectGroup, 0, len(names))
	for _, n := range names {
		groups = append(groups, *byName[n])
	}
	return groups
}
