package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/util"
)

// Renderer turns markdown templates with YAML frontmatter into HTML wrapped
// in a layout. Parsed templates and layouts are cached; rendered output is not.
type Renderer struct {
	fs          fs.FS
	md          goldmark.Markdown
	templateDir string
	layoutDir   string

	mu        sync.Mutex
	templates map[string]*parsedTemplate
	layouts   map[string]*template.Template
}

type parsedTemplate struct {
	metadata map[string]any
	body     *texttemplate.Template
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	TemplateDir string // default "."
	LayoutDir   string // default "layouts"
}

// NewRenderer creates a renderer with default directories.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithConfig(filesystem, RendererConfig{})
}

// NewRendererWithConfig creates a renderer reading from the given directories of filesystem.
func NewRendererWithConfig(filesystem fs.FS, cfg RendererConfig) *Renderer {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "."
	}
	if cfg.LayoutDir == "" {
		cfg.LayoutDir = "layouts"
	}

	return &Renderer{
		fs:          filesystem,
		md:          goldmark.New(goldmark.WithExtensions(NewButtonExtension())),
		templateDir: cfg.TemplateDir,
		layoutDir:   cfg.LayoutDir,
		templates:   make(map[string]*parsedTemplate),
		layouts:     make(map[string]*template.Template),
	}
}

// RenderResult holds a rendered email body.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string // executed markdown with backslash escapes removed, used as the plain-text alternative
}

// Render executes the named template with data, converts it to HTML and
// wraps it in layout. The layout receives .Content and .Metadata.
func (r *Renderer) Render(layout, name string, data any) (*RenderResult, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return nil, err
	}
	lt, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := tmpl.body.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	var content bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &content); err != nil {
		return nil, fmt.Errorf("%w: %s: markdown: %v", ErrRenderFailed, name, err)
	}

	var out bytes.Buffer
	err = lt.Execute(&out, map[string]any{
		"Content":  template.HTML(content.String()), //nolint:gosec // goldmark escapes raw HTML by default
		"Metadata": tmpl.metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, layout, err)
	}

	return &RenderResult{
		Metadata: tmpl.metadata,
		HTML:     out.String(),
		Text:     string(util.UnescapePunctuations(markdown.Bytes())),
	}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.templates[name]; ok {
		return t, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	body, err := texttemplate.New(name).Option("missingkey=zero").Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	t := &parsedTemplate{metadata: parsed.Metadata, body: body}
	r.templates[name] = t
	return t, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.layouts[name]; ok {
		return t, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	t, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, name, err)
	}

	r.layouts[name] = t
	return t, nil
}
