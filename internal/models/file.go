// Package models defines the shared data model for docparser: scanned
// files, project groups, per-file and per-project analysis results, run
// sessions, and the error taxonomy.
package models

import (
	"sort"
	"time"
)

// FileRecord is one supported file discovered by the scanner.
type FileRecord struct {
	// Path is the absolute file path.
	Path string

	// Name is the base file name.
	Name string

	// Extension is the lowercase extension including the dot.
	Extension string

	// Size is the file size in bytes at scan time.
	Size int64

	// Modified is the file's modification time at scan time.
	Modified time.Time

	// RelPath is the slash-separated path relative to the scan root.
	RelPath string

	// Project is the owning project name; empty means unassigned.
	Project string

	// Subfolder is the slash-separated path between the project
	// directory and the file, empty for files directly in the project.
	Subfolder string
}

// ProjectGroup is a named set of files detected as one project.
type ProjectGroup struct {
	Name  string
	Files []FileRecord
}

// FileCount returns the number of files in the group.
func (g *ProjectGroup) FileCount() int {
	return len(g.Files)
}

// TotalSize returns the summed byte size of the group's files.
func (g *ProjectGroup) TotalSize() int64 {
	var total int64
	for _, f := range g.Files {
		total += f.Size
	}
	return total
}

// FormatHistogram returns a count of files per extension.
func (g *ProjectGroup) FormatHistogram() map[string]int {
	hist := make(map[string]int)
	for _, f := range g.Files {
		hist[f.Extension]++
	}
	return hist
}

// Subfolders returns the distinct non-empty subfolder paths in the group,
// sorted.
func (g *ProjectGroup) Subfolders() []string {
	seen := make(map[string]bool)
	for _, f := range g.Files {
		if f.Subfolder != "" {
			seen[f.Subfolder] = true
		}
	}
	subs := make([]string, 0, len(seen))
	for s := range seen {
		subs = append(subs, s)
	}
	sort.Strings(subs)
	return subs
}

// ScanIssue records one path the scanner could not fully process.
type ScanIssue struct {
	Path   string
	Reason string
}

// ScanResult is the complete outcome of one directory scan. Files and
// Unassigned are sorted by path; Projects are sorted by name.
type ScanResult struct {
	// Root is the absolute scan root.
	Root string

	// Files are the supported files assigned to a project.
	Files []FileRecord

	// Projects are the detected project groups.
	Projects []ProjectGroup

	// Unassigned are supported files above the detection level.
	Unassigned []FileRecord

	// Unsupported counts skipped files with unregistered extensions.
	Unsupported int

	// Errors lists paths skipped due to access or traversal problems.
	Errors []ScanIssue
}

// Project returns the group with the given name, or nil.
func (r *ScanResult) Project(name string) *ProjectGroup {
	for i := range r.Projects {
		if r.Projects[i].Name == name {
			return &r.Projects[i]
		}
	}
	return nil
}

// TotalSize returns the summed byte size of all assigned files.
func (r *ScanResult) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// FormatHistogram returns a count of assigned files per extension.
func (r *ScanResult) FormatHistogram() map[string]int {
	hist := make(map[string]int)
	for _, f := range r.Files {
		hist[f.Extension]++
	}
	return hist
}
