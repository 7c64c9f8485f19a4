package models

import "fmt"

// Dataset is an in-memory table with an explicit column order. Rows hold one
// value per column; the column slice is the single source of truth for both
// naming and ordering, independent of any map iteration order.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// NewDataset creates an empty dataset with the given column contract.
func NewDataset(columns ...string) *Dataset {
	return &Dataset{Columns: columns}
}

// Empty reports whether the dataset has no rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Rows) == 0
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the dataset carries the named column.
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// AppendRow adds a row, which must match the column count.
func (d *Dataset) AppendRow(row []any) error {
	if len(row) != len(d.Columns) {
		return fmt.Errorf("dataset: linha com %d valores para %d colunas", len(row), len(d.Columns))
	}
	d.Rows = append(d.Rows, row)
	return nil
}

// AddColumn appends a column filled with the same value on every row.
func (d *Dataset) AddColumn(name string, value any) {
	d.Columns = append(d.Columns, name)
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], value)
	}
}

// AddComputedColumn appends a column whose value is derived per row.
func (d *Dataset) AddComputedColumn(name string, fn func(row []any) any) {
	d.Columns = append(d.Columns, name)
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], fn(d.Rows[i]))
	}
}

// Value returns the cell at (row, column name), or nil when absent.
func (d *Dataset) Value(row int, column string) any {
	idx := d.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(d.Rows) {
		return nil
	}
	return d.Rows[row][idx]
}

// Reorder rearranges the dataset to the given column order. Names not present
// in the dataset are skipped; dataset columns not named are dropped. The
// order is evaluated once here, never inferred from insertion order.
func (d *Dataset) Reorder(order []string) {
	indexes := make([]int, 0, len(order))
	newCols := make([]string, 0, len(order))
	for _, name := range order {
		if idx := d.ColumnIndex(name); idx >= 0 {
			indexes = append(indexes, idx)
			newCols = append(newCols, name)
		}
	}

	newRows := make([][]any, len(d.Rows))
	for i, row := range d.Rows {
		newRow := make([]any, len(indexes))
		for j, idx := range indexes {
			newRow[j] = row[idx]
		}
		newRows[i] = newRow
	}

	d.Columns = newCols
	d.Rows = newRows
}

// Filter keeps only the rows for which keep returns true.
func (d *Dataset) Filter(keep func(row []any) bool) {
	filtered := d.Rows[:0]
	for _, row := range d.Rows {
		if keep(row) {
			filtered = append(filtered, row)
		}
	}
	d.Rows = filtered
}
