package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ChartCSVWriter streams chart-table rows into a single semicolon-separated
// CSV file. One open handle serves every (segment, chart) combination of a
// run and the header is written exactly once, regardless of how many
// combinations contribute rows.
type ChartCSVWriter struct {
	mu            sync.Mutex
	file          *os.File
	writer        *csv.Writer
	headerWritten bool
}

// NewChartCSVWriter creates (or truncates) the CSV file at the given path.
// A UTF-8 BOM is written first so spreadsheet tools decode accents correctly.
func NewChartCSVWriter(path string) (*ChartCSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: criar diretório de saída: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: criar arquivo %q: %w", path, err)
	}

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: escrever BOM: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	return &ChartCSVWriter{file: f, writer: w}, nil
}

// WriteHeader writes the header row prefixed with the segment and chart
// identity columns. Subsequent calls are no-ops.
func (c *ChartCSVWriter) WriteHeader(tableHeader []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.headerWritten {
		return nil
	}

	row := append([]string{"Superintendencia", "Gráfico"}, tableHeader...)
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: escrever cabeçalho: %w", err)
	}
	c.writer.Flush()
	c.headerWritten = true
	return c.writer.Error()
}

// WriteRows appends every extracted row, tagged with its segment and chart.
func (c *ChartCSVWriter) WriteRows(segment, chart string, rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cells := range rows {
		row := append([]string{segment, chart}, cells...)
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: escrever linha: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *ChartCSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
