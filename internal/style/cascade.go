package style

import (
	"fmt"
	"strings"

	"github.com/gompdf/folio/internal/parser/css"
	"github.com/gompdf/folio/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
	Order       int
	Inherited   bool
}

// Source represents the source of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceAuthor
	SourceInline
)

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the value of a property, or "" when unset
func (s ComputedStyle) Get(name string) string {
	return s[name].Value
}

// inheritedProperties are copied from parent to child when the child does
// not set them.
var inheritedProperties = []string{
	"color",
	"font-family",
	"font-size",
	"font-style",
	"font-weight",
	"letter-spacing",
	"line-height",
	"list-style-type",
	"text-align",
	"text-transform",
	"white-space",
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
	parser          *css.Parser
}

// NewStyleEngine creates a new style engine
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{
		userAgentStyles: defaultUserAgentStyles(),
		parser:          css.NewParser(),
	}
}

// SetUserAgentStylesheet replaces the built-in user agent stylesheet
func (e *StyleEngine) SetUserAgentStylesheet(stylesheet *css.Stylesheet) {
	if stylesheet != nil {
		e.userAgentStyles = stylesheet
	}
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.authorStyles = append(e.authorStyles, stylesheet)
}

// AddDocumentStyles adds every <style> element of doc as an author
// stylesheet, in document order.
func (e *StyleEngine) AddDocumentStyles(doc *html.Document) error {
	if doc == nil || doc.Root == nil {
		return nil
	}
	var firstErr error
	doc.Root.Find(func(n *html.Node) bool {
		if !n.IsElement("style") {
			return false
		}
		sheet, err := e.parser.ParseString(n.TextContent())
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to parse style element: %w", err)
			}
			return false
		}
		e.AddStylesheet(sheet)
		return false
	})
	return firstErr
}

// ComputeStyles computes styles for all elements in the document, resolving
// inheritance top-down.
func (e *StyleEngine) ComputeStyles(doc *html.Document) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	e.computeStylesRecursive(doc.Root, nil, result)
	return result
}

func (e *StyleEngine) computeStylesRecursive(node *html.Node, parent ComputedStyle, result map[*html.Node]ComputedStyle) {
	if node == nil {
		return
	}

	if node.Type == xhtml.ElementNode {
		st := e.computeStyleForElement(node)
		inherit(st, parent)
		result[node] = st
		parent = st
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		e.computeStylesRecursive(child, parent, result)
	}
}

// inherit copies inheritable properties from parent that st does not set,
// and resolves explicit "inherit" values.
func inherit(st, parent ComputedStyle) {
	if parent == nil {
		return
	}
	for _, name := range inheritedProperties {
		if p, ok := parent[name]; ok {
			if _, has := st[name]; !has {
				p.Inherited = true
				st[name] = p
			}
		}
	}
	for name, prop := range st {
		if prop.Value == "inherit" {
			if p, ok := parent[name]; ok {
				p.Inherited = true
				st[name] = p
			} else {
				delete(st, name)
			}
		}
	}
}

// computeStyleForElement computes the style for a single element
func (e *StyleEngine) computeStyleForElement(node *html.Node) ComputedStyle {
	style := make(ComputedStyle)
	order := 0

	order = e.applyStylesheet(style, node, e.userAgentStyles, SourceUserAgent, order)
	for _, stylesheet := range e.authorStyles {
		order = e.applyStylesheet(style, node, stylesheet, SourceAuthor, order)
	}
	e.applyInlineStyles(style, node, order)

	return style
}

// applyStylesheet applies styles from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *html.Node, stylesheet *css.Stylesheet, source Source, order int) int {
	if stylesheet == nil {
		return order
	}
	for _, rule := range stylesheet.Rules {
		for _, selector := range rule.Selectors {
			order++
			if selectorMatches(node, selector) {
				applyDeclarations(style, rule.Declarations, calculateSpecificity(selector), source, order)
			}
		}
	}
	return order
}

// applyInlineStyles applies the style attribute
func (e *StyleEngine) applyInlineStyles(style ComputedStyle, node *html.Node, order int) {
	if v, ok := node.AttrValue("style"); ok && strings.TrimSpace(v) != "" {
		applyDeclarations(style, e.parser.ParseDeclarations(v), Specificity{ID: 1000}, SourceInline, order+1)
	}
}

// applyDeclarations applies CSS declarations following cascade order:
// importance, then origin, then specificity, then source order.
func applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source, order int) {
	for _, decl := range declarations {
		for _, d := range expandShorthand(decl) {
			candidate := StyleProperty{
				Name:        d.Property,
				Value:       d.Value,
				Important:   d.Important,
				Source:      source,
				Specificity: specificity,
				Order:       order,
			}
			if existing, exists := style[d.Property]; !exists || wins(candidate, existing) {
				style[d.Property] = candidate
			}
		}
	}
}

// wins reports whether a overrides b
func wins(a, b StyleProperty) bool {
	if a.Important != b.Important {
		return a.Important
	}
	if a.Source != b.Source {
		if a.Important {
			return a.Source < b.Source
		}
		return a.Source > b.Source
	}
	if c := compareSpecificity(a.Specificity, b.Specificity); c != 0 {
		return c > 0
	}
	return a.Order >= b.Order
}

// expandShorthand splits the few shorthands the layout engine reads per
// side. Other properties pass through unchanged.
func expandShorthand(decl *css.Declaration) []*css.Declaration {
	mk := func(prop, val string) *css.Declaration {
		return &css.Declaration{Property: prop, Value: val, Important: decl.Important}
	}
	switch decl.Property {
	case "margin", "padding":
		t, r, b, l := boxSides(decl.Value)
		return []*css.Declaration{
			decl,
			mk(decl.Property+"-top", t),
			mk(decl.Property+"-right", r),
			mk(decl.Property+"-bottom", b),
			mk(decl.Property+"-left", l),
		}
	case "border", "border-top", "border-right", "border-bottom", "border-left":
		width, color := borderParts(decl.Value)
		sides := []string{"top", "right", "bottom", "left"}
		if decl.Property != "border" {
			sides = []string{strings.TrimPrefix(decl.Property, "border-")}
		}
		out := []*css.Declaration{decl}
		for _, s := range sides {
			out = append(out, mk("border-"+s+"-width", width), mk("border-"+s+"-color", color))
		}
		return out
	case "background":
		if v := strings.TrimSpace(decl.Value); v != "" && !strings.Contains(v, "(") {
			return []*css.Declaration{decl, mk("background-color", strings.Fields(v)[0])}
		}
	}
	return []*css.Declaration{decl}
}

// boxSides expands a 1-4 value box shorthand
func boxSides(value string) (string, string, string, string) {
	f := strings.Fields(value)
	switch len(f) {
	case 1:
		return f[0], f[0], f[0], f[0]
	case 2:
		return f[0], f[1], f[0], f[1]
	case 3:
		return f[0], f[1], f[2], f[1]
	case 4:
		return f[0], f[1], f[2], f[3]
	}
	return "0", "0", "0", "0"
}

// borderParts extracts width and color from a border shorthand such as
// "2px solid #111827". A style of none zeroes the width.
func borderParts(value string) (string, string) {
	width, color := "0", "#000000"
	if strings.TrimSpace(value) == "none" || strings.TrimSpace(value) == "0" {
		return "0", color
	}
	for _, f := range strings.Fields(value) {
		switch {
		case f == "none" || f == "hidden":
			return "0", color
		case f == "solid" || f == "dashed" || f == "dotted" || f == "double":
			if width == "0" {
				width = "1px"
			}
		case f[0] >= '0' && f[0] <= '9' || f[0] == '.':
			width = f
		case f == "thin":
			width = "1px"
		case f == "medium":
			width = "3px"
		case f == "thick":
			width = "5px"
		default:
			color = f
		}
	}
	return width, color
}

// selectorMatches checks if an element matches a CSS selector. Descendant
// and child (>) combinators are supported.
func selectorMatches(node *html.Node, selector string) bool {
	parts := strings.Fields(strings.ReplaceAll(selector, ">", " > "))
	if len(parts) == 0 || node == nil {
		return false
	}
	if !matchCompoundSelector(node, parts[len(parts)-1]) {
		return false
	}

	current := node.Parent
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == ">" {
			i--
			if i < 0 || current == nil || !matchCompoundSelector(current, parts[i]) {
				return false
			}
			current = current.Parent
			continue
		}
		found := false
		for anc := current; anc != nil; anc = anc.Parent {
			if anc.Type == xhtml.ElementNode && matchCompoundSelector(anc, parts[i]) {
				found = true
				current = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// matchCompoundSelector matches a single compound selector (tag, #id,
// .class and combinations) against a node. Selectors carrying attribute
// or pseudo-class parts never match: a static capture has no hover, focus
// or visited state.
func matchCompoundSelector(node *html.Node, sel string) bool {
	if node == nil || node.Type != xhtml.ElementNode || sel == "" {
		return false
	}
	if strings.ContainsAny(sel, ":[") {
		return false
	}

	var wantTag string
	var wantID string
	var wantClasses []string

	i := 0
	if sel[0] != '.' && sel[0] != '#' {
		j := strings.IndexAny(sel, "#.")
		if j < 0 {
			j = len(sel)
		}
		wantTag = sel[:j]
		i = j
	}
	for i < len(sel) {
		j := strings.IndexAny(sel[i+1:], "#.")
		if j < 0 {
			j = len(sel)
		} else {
			j += i + 1
		}
		switch sel[i] {
		case '#':
			wantID = sel[i+1 : j]
		case '.':
			wantClasses = append(wantClasses, sel[i+1:j])
		}
		i = j
	}

	if wantTag != "" && wantTag != "*" && !strings.EqualFold(wantTag, node.Data) {
		return false
	}

	if wantID != "" {
		if id, ok := node.AttrValue("id"); !ok || id != wantID {
			return false
		}
	}

	if len(wantClasses) > 0 {
		classAttr, _ := node.AttrValue("class")
		have := make(map[string]struct{})
		for _, c := range strings.Fields(classAttr) {
			have[c] = struct{}{}
		}
		for _, need := range wantClasses {
			if _, ok := have[need]; !ok {
				return false
			}
		}
	}

	return true
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	var s Specificity
	for _, part := range strings.Fields(strings.ReplaceAll(selector, ">", " ")) {
		s.ID += strings.Count(part, "#")
		s.Class += strings.Count(part, ".")
		if part[0] != '.' && part[0] != '#' && part[0] != '*' {
			s.Element++
		}
	}
	return s
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// defaultUserAgentStyles returns the default user agent stylesheet
func defaultUserAgentStyles() *css.Stylesheet {
	stylesheet, _ := css.NewParser().ParseString(DefaultUserAgentStylesheet)
	return stylesheet
}

// DefaultUserAgentStylesheet is the baseline applied beneath template CSS
const DefaultUserAgentStylesheet = `
html, body { margin: 0; padding: 0; font-family: sans-serif; font-size: 16px; line-height: 1.4; color: #000000; }
h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.75em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 0.83em 0; font-weight: bold; }
h4 { margin: 1.12em 0; font-weight: bold; }
p { margin: 1em 0; }
ul, ol { margin: 1em 0; padding-left: 40px; }
ul { list-style-type: disc; }
ol { list-style-type: decimal; }
b, strong { font-weight: bold; }
i, em { font-style: italic; }
a { color: #0000EE; }
hr { border-top: 1px solid #d1d5db; margin: 0.5em 0; }
head, style, script, title, link, meta { display: none; }
span, a, b, strong, i, em, small, code, img, br { display: inline; }
`
