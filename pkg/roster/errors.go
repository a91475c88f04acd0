package roster

import "errors"

var (
	// ErrNotFound indicates the roster file does not exist.
	ErrNotFound = errors.New("roster: file not found")

	// ErrUnreadable indicates the roster exists but could not be parsed.
	ErrUnreadable = errors.New("roster: file unreadable")

	// ErrSheetNotFound indicates the requested worksheet is missing from the workbook.
	ErrSheetNotFound = errors.New("roster: sheet not found")

	// ErrHeaderNotFound indicates the configured header row is beyond the end of the sheet.
	ErrHeaderNotFound = errors.New("roster: header row not found")
)
