package extractor

import (
	"os"
	"strconv"
	"strings"
)

// TextExtractor handles plain text files.
type TextExtractor struct{}

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

func (e *TextExtractor) Extensions() []string {
	return []string{".txt"}
}

func (e *TextExtractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e *TextExtractor) ExtractMetadata(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content := string(data)
	lines := 0
	if len(content) > 0 {
		lines = strings.Count(content, "\n")
		if !strings.HasSuffix(content, "\n") {
			lines++
		}
	}

	return map[string]string{
		"file_type":  "text",
		"line_count": strconv.Itoa(lines),
	}, nil
}
