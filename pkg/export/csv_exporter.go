package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Dataset defines tabular export content. Each row holds one value per header.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// CSVExporter renders datasets as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := e.Write(buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the dataset to w. Short rows are padded, long rows rejected.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("csv requires at least one header")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(data.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for i, row := range data.Rows {
		if len(row) > len(data.Headers) {
			return fmt.Errorf("csv row %d has %d values for %d headers", i, len(row), len(data.Headers))
		}
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = row[j]
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
