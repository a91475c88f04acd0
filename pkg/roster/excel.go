package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/xuri/excelize/v2"
)

// DefaultHeaderRow is the 1-based row holding the column headers.
// Participant workbooks carry a title row above the header.
const DefaultHeaderRow = 2

// ExcelSource reads participant records from an .xlsx workbook.
type ExcelSource struct {
	logger    *slog.Logger
	path      string
	sheet     string
	columns   Columns
	headerRow int
}

// ExcelOption configures an ExcelSource.
type ExcelOption func(*ExcelSource)

// WithSheet selects the worksheet to read. Defaults to the first sheet.
func WithSheet(name string) ExcelOption {
	return func(s *ExcelSource) {
		s.sheet = name
	}
}

// WithHeaderRow sets the 1-based header row. Rows after it are data rows.
func WithHeaderRow(row int) ExcelOption {
	return func(s *ExcelSource) {
		if row > 0 {
			s.headerRow = row
		}
	}
}

// WithColumns overrides the header names. Empty fields keep their defaults.
func WithColumns(c Columns) ExcelOption {
	return func(s *ExcelSource) {
		s.columns = c.withDefaults()
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ExcelOption {
	return func(s *ExcelSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewExcelSource creates a Source reading the workbook at path.
// The file is opened lazily by Records.
func NewExcelSource(path string, opts ...ExcelOption) *ExcelSource {
	s := &ExcelSource{
		path:      path,
		columns:   DefaultColumns(),
		headerRow: DefaultHeaderRow,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the workbook location.
func (s *ExcelSource) Path() string {
	return s.path
}

// Records reads every data row below the header in sheet order.
// Fully blank rows are skipped; missing columns and short rows yield empty fields.
func (s *ExcelSource) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, s.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WarnContext(ctx, "failed to close workbook", slog.Any("error", err))
		}
	}()

	sheet := s.sheet
	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
		}
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, sheet, err)
	}

	records, err := parseRows(rows, s.headerRow, s.columns)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "roster loaded",
		slog.String("path", s.path),
		slog.String("sheet", sheet),
		slog.Int("participants", len(records)),
	)
	return records, nil
}

// parseRows converts raw sheet rows into records. headerRow is 1-based.
func parseRows(rows [][]string, headerRow int, cols Columns) ([]Record, error) {
	if headerRow > len(rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrHeaderNotFound, headerRow, len(rows))
	}

	h := newHeader(rows[headerRow-1])
	records := make([]Record, 0, len(rows)-headerRow)
	for _, row := range rows[headerRow:] {
		if blank(row) {
			continue
		}
		records = append(records, h.record(row, cols))
	}
	return records, nil
}
