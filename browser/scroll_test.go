package browser

import (
	"context"
	"fmt"
	"testing"
)

// fakeTable simulates a virtualized table through a scripted sequence of
// visible windows: each RevealMore advances to the next window.
type fakeTable struct {
	windows [][][]string
	pos     int
}

func (f *fakeTable) VisibleRows(context.Context) ([][]string, error) {
	if f.pos >= len(f.windows) {
		return f.windows[len(f.windows)-1], nil
	}
	return f.windows[f.pos], nil
}

func (f *fakeTable) RevealMore(context.Context) error {
	if f.pos < len(f.windows)-1 {
		f.pos++
	}
	return nil
}

func TestExtractAllRowsDeduplicatesOverlap(t *testing.T) {
	table := &fakeTable{windows: [][][]string{
		{{"jan", "10"}, {"fev", "20"}},
		{{"fev", "20"}, {"mar", "30"}},
		{{"mar", "30"}},
	}}

	rows, err := ExtractAllRows(context.Background(), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{{"jan", "10"}, {"fev", "20"}, {"mar", "30"}}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(rows), len(want), rows)
	}
	for i := range want {
		if rows[i][0] != want[i][0] || rows[i][1] != want[i][1] {
			t.Errorf("row %d = %v; want %v (first-seen order)", i, rows[i], want[i])
		}
	}
}

func TestExtractAllRowsStallTermination(t *testing.T) {
	// The window never changes after the first pass; extraction must stop
	// instead of spinning forever.
	table := &fakeTable{windows: [][][]string{
		{{"jan", "10"}},
	}}

	rows, err := ExtractAllRows(context.Background(), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestExtractAllRowsOneNewRowPerPass(t *testing.T) {
	const total = 25
	var windows [][][]string
	for i := 0; i < total; i++ {
		window := [][]string{{fmt.Sprintf("row-%02d", i), "1"}}
		windows = append(windows, window)
	}
	table := &fakeTable{windows: windows}

	rows, err := ExtractAllRows(context.Background(), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != total {
		t.Errorf("got %d rows, want %d", len(rows), total)
	}
}

func TestExtractAllRowsEqualValueRowsCollapse(t *testing.T) {
	// Two logical rows with identical cell values are indistinguishable from
	// a re-rendered duplicate, so only one survives.
	table := &fakeTable{windows: [][][]string{
		{{"Santos", "10"}, {"Santos", "10"}},
	}}

	rows, err := ExtractAllRows(context.Background(), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestExtractAllRowsEmptyTable(t *testing.T) {
	table := &fakeTable{windows: [][][]string{{}}}

	rows, err := ExtractAllRows(context.Background(), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
