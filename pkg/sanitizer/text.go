// Package sanitizer cleans untrusted roster values before they are embedded
// in email templates.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = sync.OnceValue(bluemonday.StrictPolicy)

// markdownEscaper backslash-escapes characters that goldmark treats as inline markup.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`!`, `\!`,
	`|`, `\|`,
)

// PlainText strips every HTML element from s, decodes entities and collapses
// runs of whitespace to a single space.
func PlainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strictPolicy().Sanitize(s))), " ")
}

// EscapeMarkdown escapes s for literal use inside a markdown template.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// MarkdownText is PlainText followed by EscapeMarkdown.
func MarkdownText(s string) string {
	return EscapeMarkdown(PlainText(s))
}
