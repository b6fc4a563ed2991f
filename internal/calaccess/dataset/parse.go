package dataset

import (
	"strconv"
	"strings"
	"time"
)

// headerIndex maps upper-cased column names to positions in a source row.
type headerIndex map[string]int

func indexHeader(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, col := range header {
		idx[strings.ToUpper(strings.TrimSpace(col))] = i
	}
	return idx
}

// get returns the trimmed field for col, or "" when the column is missing
// or the row is ragged short.
func (h headerIndex) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseIntOr parses s as an integer, returning def when empty or malformed.
func parseIntOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// parseIntPtr parses s as an integer, returning nil when empty, zero, or
// malformed. District zero in the extracts means "no district".
func parseIntPtr(s string) *int {
	v := parseIntOr(s, 0)
	if v == 0 {
		return nil
	}
	return &v
}

// sourceDateLayouts covers the date formats seen across CAL-ACCESS extracts
// and scrape snapshots.
var sourceDateLayouts = []string{
	"2006-01-02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
	"01/02/2006",
}

// normalizeDate converts a source date string to "YYYY-MM-DD", or "" when
// the value is empty or unparseable. Raw tables store dates as text in this
// normalized form.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range sourceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// nullableDate maps "" to nil for insertion into a nullable date column.
func nullableDate(s string) any {
	d := normalizeDate(s)
	if d == "" {
		return nil
	}
	return d
}

// cleanName upper-cases and collapses interior whitespace.
func cleanName(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
