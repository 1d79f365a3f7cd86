package storage

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
)

type ExportData struct {
	Run         RunMetadata      `json:"run"`
	Columns     []string         `json:"columns"`
	Experiments []map[string]any `json:"experiments"`
}

// Export assembles a run's metadata and summary rows. Numeric cells become
// JSON numbers; "N/A" becomes null; everything else stays a string.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	header, rows, err := s.LoadSummary(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{Run: *meta, Columns: header, Experiments: make([]map[string]any, 0, len(rows))}
	for _, row := range rows {
		entry := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				entry[col] = cell(row[i])
			}
		}
		data.Experiments = append(data.Experiments, entry)
	}
	return data, nil
}

func cell(s string) any {
	if s == "N/A" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}

func ExportJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSONFile(path string, data *ExportData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExportJSON(f, data)
}
