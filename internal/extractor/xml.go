package extractor

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// XMLExtractor handles XML files via token streaming, so large documents
// never need a full in-memory tree.
type XMLExtractor struct{}

// NewXMLExtractor creates an XMLExtractor.
func NewXMLExtractor() *XMLExtractor { return &XMLExtractor{} }

func (e *XMLExtractor) Extensions() []string {
	return []string{".xml"}
}

func (e *XMLExtractor) ExtractText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	decoder := xml.NewDecoder(f)
	var chunks []string
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if cd, ok := tok.(xml.CharData); ok {
			if text := strings.TrimSpace(string(cd)); text != "" {
				chunks = append(chunks, text)
			}
		}
	}

	return strings.Join(chunks, "\n"), nil
}

func (e *XMLExtractor) ExtractMetadata(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := xml.NewDecoder(f)

	var rootElement string
	uniqueTags := map[string]bool{}
	totalElements := 0
	depth, maxDepth := 0, 0

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if rootElement == "" {
				rootElement = t.Name.Local
			}
			uniqueTags[t.Name.Local] = true
			totalElements++
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case xml.EndElement:
			depth--
		}
	}

	return map[string]string{
		"file_type":      "xml",
		"root_element":   rootElement,
		"total_elements": strconv.Itoa(totalElements),
		"unique_tags":    strconv.Itoa(len(uniqueTags)),
		"max_depth":      strconv.Itoa(maxDepth),
	}, nil
}
