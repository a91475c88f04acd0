package mailer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// buttonPrefix opens the button syntax: [!button|Label](URL).
var buttonPrefix = []byte("[!button|")

// KindButton is the node kind for ButtonNode.
var KindButton = ast.NewNodeKind("Button")

// ButtonNode is a call-to-action link rendered as a styled anchor.
type ButtonNode struct {
	ast.BaseInline
	URL   []byte
	Label []byte
}

// Kind implements ast.Node.
func (n *ButtonNode) Kind() ast.NodeKind {
	return KindButton
}

// Dump implements ast.Node.
func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":   string(n.URL),
		"Label": string(n.Label),
	}, nil)
}

type buttonParser struct{}

// NewButtonParser returns an inline parser for [!button|Label](URL).
func NewButtonParser() parser.InlineParser {
	return buttonParser{}
}

func (buttonParser) Trigger() []byte {
	return []byte{'['}
}

func (buttonParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	label, url, n, ok := parseButton(line)
	if !ok {
		return nil
	}
	block.Advance(n)
	return &ButtonNode{URL: url, Label: label}
}

// parseButton matches the button syntax at the start of line and returns
// the label, the URL and the number of bytes consumed.
func parseButton(line []byte) (label, url []byte, n int, ok bool) {
	rest, found := bytes.CutPrefix(line, buttonPrefix)
	if !found {
		return nil, nil, 0, false
	}

	label, rest, found = bytes.Cut(rest, []byte("]("))
	if !found || len(label) == 0 || bytes.ContainsAny(label, "[]\n") {
		return nil, nil, 0, false
	}

	url, _, found = bytes.Cut(rest, []byte(")"))
	url = bytes.TrimSpace(url)
	if !found || len(url) == 0 || bytes.ContainsAny(url, " \n") {
		return nil, nil, 0, false
	}

	n = len(buttonPrefix) + len(label) + 2 + bytes.IndexByte(rest, ')') + 1
	return label, url, n, true
}

type buttonRenderer struct{}

// NewButtonRenderer returns the HTML renderer for ButtonNode.
func NewButtonRenderer() renderer.NodeRenderer {
	return buttonRenderer{}
}

func (r buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, r.render)
}

func (buttonRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ButtonNode)
	if !safeURL(n.URL) {
		_, _ = w.Write(util.EscapeHTML(n.Label))
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(n.URL))
	_, _ = w.WriteString(`" class="button">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

// safeURL allows http, https and mailto links only.
func safeURL(url []byte) bool {
	lower := bytes.ToLower(url)
	for _, scheme := range []string{"https://", "http://", "mailto:"} {
		if bytes.HasPrefix(lower, []byte(scheme)) {
			return true
		}
	}
	return false
}

type buttonExtension struct{}

// NewButtonExtension returns a goldmark extension adding button links.
func NewButtonExtension() goldmark.Extender {
	return buttonExtension{}
}

func (buttonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewButtonParser(), 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewButtonRenderer(), 50),
	))
}
