package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// rawTable is the content of one raw export file: a header row plus string
// cell values, tagged with its origin filename.
type rawTable struct {
	Filename string
	Header   []string
	Rows     [][]string
}

// readExcelFile loads the first sheet of an .xlsx export.
func readExcelFile(path string) (*rawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("excel: abrir %q: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel: %q não possui planilhas", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("excel: ler linhas de %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel: %q está vazio", path)
	}

	table := &rawTable{
		Filename: filepath.Base(path),
		Header:   rows[0],
	}

	// GetRows trims trailing empty cells; pad every row to the header width
	// so column positions stay aligned.
	width := len(table.Header)
	for _, row := range rows[1:] {
		padded := make([]string, width)
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}

	return table, nil
}

// readExcelDir loads every .xlsx in a directory, skipping editor lock files.
func readExcelDir(dir string) ([]*rawTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("excel: ler diretório %q: %w", dir, err)
	}

	var tables []*rawTable
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".xlsx") || strings.HasPrefix(name, "~") {
			continue
		}
		table, err := readExcelFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}
