package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ptMonthAbbrevs are the lower-case pt-BR month abbreviations used by the
// canonical "{abbrev}/{year}" column token.
var ptMonthAbbrevs = []string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

var ptMonthFull = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "março": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June,
	"julho": time.July, "agosto": time.August, "setembro": time.September,
	"outubro": time.October, "novembro": time.November, "dezembro": time.December,
}

var ptMonthFullNames = []string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// dateHeaderLayouts are the raw header formats the exports are known to use
// for per-month columns.
var dateHeaderLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/2006",
	"2006-01",
}

// canonicalMonthToken formats a (year, month) pair as the canonical column
// token, e.g. "jan/2025".
func canonicalMonthToken(year int, month time.Month) string {
	return fmt.Sprintf("%s/%d", ptMonthAbbrevs[int(month)-1], year)
}

// parseMonthHeader recognizes a column header that names a calendar month,
// either as a date-like string or as an already-canonical token, and returns
// its (year, month).
func parseMonthHeader(header string) (int, time.Month, bool) {
	s := strings.TrimSpace(header)
	if s == "" {
		return 0, 0, false
	}

	for _, layout := range dateHeaderLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), t.Month(), true
		}
	}

	return parseCanonicalToken(s)
}

// parseCanonicalToken parses "jan/2025" back into (2025, January). The sort
// key for month columns is derived from this pair, never from lexical
// order, which would put "jan/2025" before "dec/2024".
func parseCanonicalToken(token string) (int, time.Month, bool) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(token)), "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || year < 1900 || year > 2200 {
		return 0, 0, false
	}

	abbrev := strings.TrimSpace(parts[0])
	for i, a := range ptMonthAbbrevs {
		if a == abbrev {
			return year, time.Month(i + 1), true
		}
	}
	return 0, 0, false
}

// parsePtLongMonth parses period labels like "março de 2025" or "março 2025".
func parsePtLongMonth(label string) (int, time.Month, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " de ", " ")
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, 0, false
	}

	month, ok := ptMonthFull[parts[0]]
	if !ok {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return year, month, true
}

// formatPtLongMonth renders a (year, month) pair as "março 2025".
func formatPtLongMonth(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", ptMonthFullNames[int(month)-1], year)
}

// sortMonthTokens orders canonical tokens chronologically by (year, month).
// Unparseable tokens sink to the end.
func sortMonthTokens(tokens []string) {
	key := func(tok string) int {
		year, month, ok := parseCanonicalToken(tok)
		if !ok {
			return 9999*100 + 99
		}
		return year*100 + int(month)
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return key(tokens[i]) < key(tokens[j])
	})
}
