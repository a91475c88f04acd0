package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Template is a parsed template file: YAML frontmatter plus a markdown body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits content into frontmatter metadata and body.
// Frontmatter is optional; when present it opens with a "---" line and
// closes with the next "---" line. CRLF line endings are accepted.
func ParseTemplate(content []byte) (*Template, error) {
	first, rest, _ := cutLine(content)
	if string(bytes.TrimSpace(first)) != frontmatterDelimiter {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	var front [][]byte
	for {
		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
		}
		var line []byte
		line, rest, _ = cutLine(rest)
		if string(bytes.TrimSpace(line)) == frontmatterDelimiter {
			break
		}
		front = append(front, line)
	}

	metadata := map[string]any{}
	if raw := bytes.Join(front, []byte("\n")); len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
		if metadata == nil {
			metadata = map[string]any{}
		}
	}

	return &Template{Metadata: metadata, Body: string(rest)}, nil
}

// cutLine returns the first line of b without its terminator and the remainder.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}
