package roster

import (
	"context"
	"strings"

	"github.com/iancoleman/strcase"
)

// Default column headers of the participant workbook.
const (
	DefaultNameColumn       = "NAMES"
	DefaultIdentifierColumn = "ROLL NUMBERS"
	DefaultEmailColumn      = "EMAILS"
)

// Record is a single participant row. Fields are raw cell values and may be
// empty or padded with whitespace; trimming and presence checks are the
// caller's concern.
type Record struct {
	Name       string
	Identifier string
	Email      string
}

// Source yields the ordered participant records of one roster.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// Columns maps record fields to header names.
type Columns struct {
	Name       string
	Identifier string
	Email      string
}

// DefaultColumns returns the header names used by the participant workbook.
func DefaultColumns() Columns {
	return Columns{
		Name:       DefaultNameColumn,
		Identifier: DefaultIdentifierColumn,
		Email:      DefaultEmailColumn,
	}
}

// withDefaults fills empty column names with the defaults.
func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Identifier == "" {
		c.Identifier = d.Identifier
	}
	if c.Email == "" {
		c.Email = d.Email
	}
	return c
}

// normalizeHeader folds header spellings such as "Roll Numbers", "roll_numbers"
// and "ROLL NUMBERS" onto one key.
func normalizeHeader(h string) string {
	return strcase.ToScreamingSnake(strings.TrimSpace(h))
}

// header is a resolved header row: normalized name to column index.
type header map[string]int

func newHeader(cells []string) header {
	h := make(header, len(cells))
	for i, cell := range cells {
		key := normalizeHeader(cell)
		if key == "" {
			continue
		}
		// First occurrence wins for duplicated headers.
		if _, ok := h[key]; !ok {
			h[key] = i
		}
	}
	return h
}

// value returns the cell under column, or "" when the column or cell is absent.
func (h header) value(row []string, column string) string {
	idx, ok := h[normalizeHeader(column)]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func (h header) record(row []string, cols Columns) Record {
	return Record{
		Name:       h.value(row, cols.Name),
		Identifier: h.value(row, cols.Identifier),
		Email:      h.value(row, cols.Email),
	}
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// StaticSource is an in-memory Source.
type StaticSource []Record

// Records returns a copy of the static records.
func (s StaticSource) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}
