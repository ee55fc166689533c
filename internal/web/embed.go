package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

//go:embed templates
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS

// Templates holds one template set per page. Every set is the base layout
// plus a single page, so each page's "content" block stays its own.
type Templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"initials": func(name string) string {
		var b strings.Builder
		for _, part := range strings.Fields(name) {
			r, _ := utf8.DecodeRuneInString(part)
			b.WriteRune(unicode.ToUpper(r))
		}
		return b.String()
	},
}

// LoadTemplates parses every page under templates/pages against the base
// layout.
func LoadTemplates() (*Templates, error) {
	return loadTemplates(TemplatesFS)
}

func loadTemplates(fsys fs.FS) (*Templates, error) {
	baseContent, err := fs.ReadFile(fsys, "templates/layouts/base.html")
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(fsys, "templates/pages")
	if err != nil {
		return nil, err
	}

	t := &Templates{pages: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		pageContent, err := fs.ReadFile(fsys, path.Join("templates/pages", entry.Name()))
		if err != nil {
			return nil, err
		}

		pageTmpl, err := template.New(entry.Name()).Funcs(funcs).Parse(string(baseContent))
		if err != nil {
			return nil, fmt.Errorf("parsing base layout for %s: %w", entry.Name(), err)
		}
		if _, err := pageTmpl.Parse(string(pageContent)); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		t.pages[entry.Name()] = pageTmpl
	}

	return t, nil
}

// Render executes page into w. Output is buffered so a template error never
// leaves a half-written page behind.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (t *Templates) Has(page string) bool {
	_, ok := t.pages[page]
	return ok
}

// GetStaticFS returns the static file system for serving static files
func GetStaticFS() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}
