// Package certificate renders participation certificates as single-page PDF documents.
//
// A Renderer is bound to a certificate folder and to the run-wide Event metadata.
// Each call to Render produces {folder}/{identifier}.pdf, creating the folder when
// needed and replacing any artifact previously written for the same identifier:
//
//	r := certificate.New("certificates", certificate.Event{
//		Name:         "Go Workshop",
//		Date:         "12 March 2025",
//		Organization: "Acme Institute",
//	})
//
//	path, err := r.Render(ctx, "Asha Rao", "R1")
//	// path == "certificates/R1.pdf"
//
// Rendering is deterministic: document dates are pinned, so identical inputs
// produce byte-identical files.
//
// Identifiers are used verbatim as file names. Identifiers containing path
// separators or control characters, and the names "." and "..", are rejected
// with ErrInvalidIdentifier rather than escaped.
//
// The core PDF fonts cover Windows-1252 only. Names and event names outside that
// code page fail with ErrUnsupportedText.
//
// Documents are written to a temporary file and renamed into place, so a failed
// render leaves no partial artifact behind.
package certificate
