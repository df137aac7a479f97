package extractor

import (
	"encoding/json"
	"os"
	"strconv"
)

// JSONExtractor handles JSON files. The document is re-indented for the
// extracted text so summaries see structure rather than a single line.
type JSONExtractor struct{}

// NewJSONExtractor creates a JSONExtractor.
func NewJSONExtractor() *JSONExtractor { return &JSONExtractor{} }

func (e *JSONExtractor) Extensions() []string {
	return []string{".json"}
}

func (e *JSONExtractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return "", err
	}

	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty), nil
}

func (e *JSONExtractor) ExtractMetadata(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{"file_type": "json"}
	if len(data) == 0 {
		meta["top_level_type"] = "empty"
		return meta, nil
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case map[string]any:
		meta["top_level_type"] = "object"
		meta["key_count"] = strconv.Itoa(len(v))
	case []any:
		meta["top_level_type"] = "array"
		meta["element_count"] = strconv.Itoa(len(v))
	default:
		meta["top_level_type"] = "scalar"
	}
	meta["max_depth"] = strconv.Itoa(jsonDepth(value))
	return meta, nil
}

// jsonDepth returns the nesting depth of a decoded JSON value. Scalars
// have depth 0.
func jsonDepth(value any) int {
	switch v := value.(type) {
	case map[string]any:
		max := 0
		for _, child := range v {
			if d := jsonDepth(child); d > max {
				max = d
			}
		}
		return max + 1
	case []any:
		max := 0
		for _, child := range v {
			if d := jsonDepth(child); d > max {
				max = d
			}
		}
		return max + 1
	default:
		return 0
	}
}
