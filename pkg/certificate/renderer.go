package certificate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	defaultExt = "pdf"
	titleText  = "Certificate of Participation"
)

// documentEpoch is stamped as creation and modification date so that identical
// inputs produce byte-identical documents.
var documentEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Palette.
var (
	accent = [3]int{102, 126, 234}
	muted  = [3]int{100, 116, 139}
	body   = [3]int{71, 85, 105}
	ink    = [3]int{30, 41, 59}
	white  = [3]int{255, 255, 255}
)

// Event is the run-wide metadata printed on every certificate.
type Event struct {
	Name         string
	Date         string
	Organization string
}

// Renderer produces single-page PDF certificates and writes them to
// {folder}/{identifier}.{ext}, replacing any previous artifact for the identifier.
type Renderer struct {
	logger      *slog.Logger
	folder      string
	ext         string
	event       Event
	signatories [2]Signatory
}

// New creates a Renderer writing into folder with the given event metadata.
func New(folder string, event Event, opts ...Option) *Renderer {
	r := &Renderer{
		folder: folder,
		event:  event,
		ext:    defaultExt,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		signatories: [2]Signatory{
			{Title: "Event Coordinator"},
			{Title: "Principal"},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ext = strings.TrimPrefix(r.ext, ".")
	return r
}

// Path returns the deterministic artifact path for an identifier.
func (r *Renderer) Path(identifier string) string {
	return filepath.Join(r.folder, identifier+"."+r.ext)
}

// Render generates the certificate for a participant using the renderer's event.
func (r *Renderer) Render(ctx context.Context, name, identifier string) (string, error) {
	return r.RenderEvent(ctx, name, identifier, r.event)
}

// RenderEvent generates the certificate for a participant and an explicit event.
// The document is written to a temporary file in the target folder and renamed
// into place, so a failed render never leaves a partial artifact at the final path.
func (r *Renderer) RenderEvent(ctx context.Context, name, identifier string, ev Event) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ValidateIdentifier(identifier); err != nil {
		return "", err
	}

	data, err := r.Document(name, ev)
	if err != nil {
		return "", err
	}

	path := r.Path(identifier)
	if err := writeAtomic(r.folder, path, data); err != nil {
		return "", err
	}

	r.logger.DebugContext(ctx, "certificate rendered",
		slog.String("identifier", identifier),
		slog.String("path", path),
		slog.Int("bytes", len(data)),
	)
	return path, nil
}

// Document returns the encoded PDF for a participant without touching the filesystem.
// A name or event name outside Windows-1252 fails with ErrUnsupportedText.
func (r *Renderer) Document(name string, ev Event) ([]byte, error) {
	if err := checkEncodable("name", name); err != nil {
		return nil, err
	}
	if err := checkEncodable("event name", ev.Name); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.layout(name, ev).Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

// ValidateIdentifier rejects identifiers that would escape the certificate folder
// or produce an unusable file name.
func ValidateIdentifier(identifier string) error {
	if identifier == "." || identifier == ".." ||
		strings.ContainsAny(identifier, `/\`) ||
		strings.ContainsFunc(identifier, unicode.IsControl) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
	return nil
}

func (r *Renderer) layout(name string, ev Event) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(documentEpoch)
	pdf.SetModificationDate(documentEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(titleText, true)
	pdf.SetAuthor(ev.Organization, true)
	pdf.SetCreator("certsend", false)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 10)
		setTextColor(pdf, muted)
		pdf.CellFormat(0, 8, encode(strings.ToUpper(ev.Organization)), "", 1, "C", false, 0, "")
		pdf.Ln(6)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		setTextColor(pdf, muted)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageWidth - left - right

	pdf.SetFont("Times", "B", 24)
	setTextColor(pdf, accent)
	pdf.CellFormat(0, 15, titleText, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	setTextColor(pdf, muted)
	pdf.CellFormat(0, 10, "This is to certify that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	setTextColor(pdf, body)
	pdf.CellFormat(0, 10, "This certificate is proudly awarded to", "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "B", 22)
	setTextColor(pdf, ink)
	pdf.CellFormat(0, 15, encode(name), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	setTextColor(pdf, body)
	pdf.MultiCell(0, 10, "For active participation and demonstrating exceptional enthusiasm in the", "", "C", false)
	pdf.Ln(10)

	// Highlighted event block.
	pdf.SetFillColor(accent[0], accent[1], accent[2])
	pdf.SetDrawColor(accent[0], accent[1], accent[2])
	pdf.SetLineWidth(0.5)
	x, y := pdf.GetXY()
	pdf.Rect(x, y, width, 25, "DF")
	pdf.SetXY(x, y+2.5)
	pdf.SetFont("Times", "B", 16)
	setTextColor(pdf, white)
	pdf.CellFormat(0, 10, encode(ev.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 10, encode("Organized on "+ev.Date), "", 1, "C", false, 0, "")
	pdf.Ln(25)

	// Signature lines.
	column := (width - 20) / 2
	pdf.SetFont("Times", "B", 14)
	setTextColor(pdf, accent)
	pdf.CellFormat(column, 10, encode(r.signatories[0].Name), "B", 0, "C", false, 0, "")
	pdf.CellFormat(20, 10, "", "", 0, "C", false, 0, "")
	pdf.CellFormat(column, 10, encode(r.signatories[1].Name), "B", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	setTextColor(pdf, muted)
	pdf.CellFormat(column, 10, encode(signatureLine(r.signatories[0], ev.Organization)), "", 0, "C", false, 0, "")
	pdf.CellFormat(20, 10, "", "", 0, "C", false, 0, "")
	pdf.CellFormat(column, 10, encode(signatureLine(r.signatories[1], ev.Organization)), "", 1, "C", false, 0, "")

	return pdf
}

func signatureLine(s Signatory, organization string) string {
	switch {
	case s.Title == "":
		return organization
	case organization == "":
		return s.Title
	default:
		return s.Title + ", " + organization
	}
}

func setTextColor(pdf *fpdf.Fpdf, c [3]int) {
	pdf.SetTextColor(c[0], c[1], c[2])
}

// encode converts UTF-8 text to Windows-1252 for the PDF core fonts.
// Runes outside the code page become '?'.
func encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

func checkEncodable(field, s string) error {
	for _, c := range s {
		if _, ok := charmap.Windows1252.EncodeRune(c); !ok {
			return fmt.Errorf("%w: %s contains %q", ErrUnsupportedText, field, c)
		}
	}
	return nil
}

// writeAtomic writes data to a temp file in dir and renames it over path.
func writeAtomic(dir, path string, data []byte) (err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".certificate-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
