package extractor

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
)

// CSVExtractor handles CSV files. Rows are flattened to comma-joined
// lines; ragged rows are tolerated.
type CSVExtractor struct{}

// NewCSVExtractor creates a CSVExtractor.
func NewCSVExtractor() *CSVExtractor { return &CSVExtractor{} }

func (e *CSVExtractor) Extensions() []string {
	return []string{".csv"}
}

func (e *CSVExtractor) readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func (e *CSVExtractor) ExtractText(path string) (string, error) {
	rows, err := e.readAll(path)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, ", "))
	}
	return strings.Join(lines, "\n"), nil
}

func (e *CSVExtractor) ExtractMetadata(path string) (map[string]string, error) {
	rows, err := e.readAll(path)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{
		"file_type": "csv",
		"row_count": strconv.Itoa(len(rows)),
	}
	if len(rows) > 0 {
		meta["column_count"] = strconv.Itoa(len(rows[0]))
		meta["header"] = strings.Join(rows[0], ", ")
	}
	return meta, nil
}
