// Package leadcsv implements the lead import pipeline: CSV parsing,
// header-to-field auto-mapping, and row normalization into lead records.
//
// The parser is deliberately naive: it splits on newlines then commas and
// strips one surrounding double-quote per cell. Embedded commas inside
// quoted fields are not handled. Ragged rows are accepted; missing cells
// are treated as absent fields by the normalizer.
package leadcsv

import (
	"strings"

	"github.com/calder/taxlead-crm-go/internal/domain"
)

// Parsed is the raw outcome of parsing a CSV payload.
type Parsed struct {
	Headers []string
	Rows    [][]string
}

// Parse splits raw CSV text into headers and data rows.
// It returns a validation error when fewer than 2 non-blank lines exist
// (header plus at least one data row).
func Parse(raw string) (*Parsed, error) {
	lines := make([]string, 0, 64)
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) < 2 {
		return nil, &domain.ErrValidation{
			Field:   "file",
			Message: "CSV must contain a header line and at least one data row",
		}
	}

	headers := splitLine(lines[0])
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, splitLine(line))
	}

	return &Parsed{Headers: headers, Rows: rows}, nil
}

// splitLine splits a CSV line on commas and strips one leading and one
// trailing double-quote per cell.
func splitLine(line string) []string {
	cells := strings.Split(line, ",")
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.TrimSpace(c)
		c = strings.TrimPrefix(c, `"`)
		c = strings.TrimSuffix(c, `"`)
		out[i] = c
	}
	return out
}
