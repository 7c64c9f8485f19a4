package services

import (
	"testing"
	"time"
)

func TestParseMonthHeader(t *testing.T) {
	tests := []struct {
		header string
		year   int
		month  time.Month
		ok     bool
	}{
		{"2025-03-01 00:00:00", 2025, time.March, true},
		{"2025-03-01", 2025, time.March, true},
		{"01/12/2024", 2024, time.December, true},
		{"03/2025", 2025, time.March, true},
		{"2025-03", 2025, time.March, true},
		{"jan/2025", 2025, time.January, true},
		{"DEZ/2024", 2024, time.December, true},
		{"MUNICIPIO", 0, 0, false},
		{"Mês_Ano", 0, 0, false},
		{"", 0, 0, false},
		{"xyz/2025", 0, 0, false},
		{"jan/99", 0, 0, false},
	}

	for _, tt := range tests {
		year, month, ok := parseMonthHeader(tt.header)
		if ok != tt.ok || year != tt.year || month != tt.month {
			t.Errorf("parseMonthHeader(%q) = (%d, %v, %v); want (%d, %v, %v)",
				tt.header, year, month, ok, tt.year, tt.month, tt.ok)
		}
	}
}

func TestCanonicalMonthToken(t *testing.T) {
	if got := canonicalMonthToken(2025, time.January); got != "jan/2025" {
		t.Errorf("canonicalMonthToken = %q; want jan/2025", got)
	}
	if got := canonicalMonthToken(2024, time.December); got != "dez/2024" {
		t.Errorf("canonicalMonthToken = %q; want dez/2024", got)
	}
}

func TestSortMonthTokensChronological(t *testing.T) {
	tokens := []string{"mar/2025", "dez/2024", "jan/2025"}
	sortMonthTokens(tokens)

	want := []string{"dez/2024", "jan/2025", "mar/2025"}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("sortMonthTokens = %v; want %v", tokens, want)
		}
	}
}

func TestSortMonthTokensUnparseableSinks(t *testing.T) {
	tokens := []string{"lixo", "jan/2025"}
	sortMonthTokens(tokens)
	if tokens[0] != "jan/2025" || tokens[1] != "lixo" {
		t.Errorf("sortMonthTokens = %v; want unparseable last", tokens)
	}
}

func TestParsePtLongMonth(t *testing.T) {
	tests := []struct {
		label string
		year  int
		month time.Month
		ok    bool
	}{
		{"março de 2025", 2025, time.March, true},
		{"Janeiro de 2025", 2025, time.January, true},
		{"dezembro 2024", 2024, time.December, true},
		{"smarch de 2025", 0, 0, false},
		{"março", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		year, month, ok := parsePtLongMonth(tt.label)
		if ok != tt.ok || year != tt.year || month != tt.month {
			t.Errorf("parsePtLongMonth(%q) = (%d, %v, %v); want (%d, %v, %v)",
				tt.label, year, month, ok, tt.year, tt.month, tt.ok)
		}
	}
}

func TestFormatPtLongMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  string
	}{
		{2025, time.March, "março 2025"},
		{2024, time.December, "dezembro 2024"},
		{2025, time.January, "janeiro 2025"},
	}

	for _, tt := range tests {
		if got := formatPtLongMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("formatPtLongMonth(%d, %v) = %q; want %q", tt.year, tt.month, got, tt.want)
		}
	}
}
