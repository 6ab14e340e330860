// Package templates renders a profile into one of the resume layouts.
//
// Every layout is a complete HTML document whose printable content sits
// under the element with id RootID.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gompdf/folio/internal/profile"
	"github.com/gompdf/folio/pkg/errors"
)

// RootID is the id of the element holding the printable resume
const RootID = "resume-root"

//go:embed layouts/*.html
var layouts embed.FS

// Template describes one resume layout
type Template struct {
	Name        string
	Title       string
	Description string
	Icon        string
}

// builtin lists the layouts in display order
var builtin = []Template{
	{
		Name:        "ats",
		Title:       "ATS Optimized",
		Description: "Perfect for ATS • Single column • Max parsing",
		Icon:        "🎯",
	},
	{
		Name:        "sidebar",
		Title:       "Modern Sidebar",
		Description: "Professional dark sidebar • Contemporary design",
		Icon:        "💼",
	},
	{
		Name:        "clean",
		Title:       "Clean Professional",
		Description: "Classic two-column • Perfect alignment",
		Icon:        "📋",
	},
}

// Registry renders profiles with a fixed set of layouts
type Registry interface {
	List() []Template
	Lookup(name string) (Template, bool)
	Render(name string, p *profile.Profile) (string, error)
}

// Set is the Registry of the built-in layouts
type Set struct {
	list   []Template
	parsed map[string]*template.Template
}

// New parses the built-in layouts
func New() (*Set, error) {
	s := &Set{parsed: make(map[string]*template.Template, len(builtin))}
	for _, t := range builtin {
		tmpl, err := template.New(t.Name + ".html").Funcs(funcs()).ParseFS(layouts, "layouts/"+t.Name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", t.Name, err)
		}
		s.parsed[t.Name] = tmpl
		s.list = append(s.list, t)
	}
	return s, nil
}

// MustNew is New for package initialization; it panics on a broken layout
func MustNew() *Set {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// List returns the layouts in display order
func (s *Set) List() []Template {
	out := make([]Template, len(s.list))
	copy(out, s.list)
	return out
}

// Lookup finds a layout by name, ignoring case
func (s *Set) Lookup(name string) (Template, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range s.list {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// view is the data handed to a layout
type view struct {
	*profile.Profile
	Links []profile.SocialLink
}

// Render executes the named layout for p. An empty or unknown name is a
// NO_TEMPLATE error.
func (s *Set) Render(name string, p *profile.Profile) (string, error) {
	t, ok := s.Lookup(name)
	if !ok {
		if strings.TrimSpace(name) == "" {
			return "", errors.New(errors.ErrCodeNoTemplate, "no template selected")
		}
		return "", errors.New(errors.ErrCodeNoTemplate, "unknown template %q", name)
	}
	if p == nil {
		return "", errors.New(errors.ErrCodeInvalidProfile, "no profile to render")
	}

	var buf bytes.Buffer
	if err := s.parsed[t.Name].Execute(&buf, view{Profile: p, Links: p.SocialLinks()}); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "failed to render template %s", t.Name)
	}
	return buf.String(), nil
}
