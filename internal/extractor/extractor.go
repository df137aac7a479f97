// Package extractor converts supported document formats to plain text
// plus format-specific metadata. Extractors are registered by extension;
// extraction failures are typed ExtractionErrors that callers record on
// the file result without aborting the run.
package extractor

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/docparser/internal/models"
)

// Extraction is the outcome of extracting one file.
type Extraction struct {
	// Text is the plain-text content.
	Text string

	// Metadata holds format-specific fields (line counts, titles,
	// element counts) as strings.
	Metadata map[string]string
}

// Extractor handles one or more file formats.
type Extractor interface {
	// Extensions returns the lowercase dot-prefixed extensions this
	// extractor handles.
	Extensions() []string

	// ExtractText returns the plain-text content of the file.
	ExtractText(path string) (string, error)

	// ExtractMetadata returns format-specific metadata for the file.
	ExtractMetadata(path string) (map[string]string, error)
}

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates a Registry with the built-in extractors for text,
// markdown, HTML, XML, CSV, and JSON files.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(NewTextExtractor())
	r.Register(NewMarkdownExtractor())
	r.Register(NewHTMLExtractor())
	r.Register(NewXMLExtractor())
	r.Register(NewCSVExtractor())
	r.Register(NewJSONExtractor())
	return r
}

// Register adds an extractor for each of its extensions, replacing any
// previous registration.
func (r *Registry) Register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether the extension has a registered extractor.
// The extension may be given with or without the leading dot, any case.
func (r *Registry) Supports(ext string) bool {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Extract runs the registered extractor for the file's extension and
// returns text plus metadata. Failures are returned as ExtractionErrors;
// a missing extractor yields ErrUnsupportedFormat.
func (r *Registry) Extract(path string) (*Extraction, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, &models.ExtractionError{
			Path:    path,
			Format:  ext,
			Message: "no extractor registered",
			Err:     models.ErrUnsupportedFormat,
		}
	}

	text, err := e.ExtractText(path)
	if err != nil {
		return nil, &models.ExtractionError{
			Path:    path,
			Format:  ext,
			Message: "text extraction failed",
			Err:     err,
		}
	}

	meta, err := e.ExtractMetadata(path)
	if err != nil {
		// Text came through; degrade to text-only rather than fail.
		meta = map[string]string{}
	}

	return &Extraction{Text: text, Metadata: meta}, nil
}
