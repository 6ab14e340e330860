package style

import (
	"testing"

	"github.com/gompdf/folio/internal/parser/css"
	"github.com/gompdf/folio/internal/parser/html"
)

func compute(t *testing.T, markup, sheet string) (*html.Document, map[*html.Node]ComputedStyle) {
	t.Helper()
	doc, err := html.NewParser().ParseString(markup)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	ss, err := css.NewParser().ParseString(sheet)
	if err != nil {
		t.Fatalf("parse css: %v", err)
	}
	e := NewStyleEngine()
	e.AddStylesheet(ss)
	return doc, e.ComputeStyles(doc)
}

func TestSpecificityOrder(t *testing.T) {
	doc, styles := compute(t,
		`<div id="main" class="card"><p class="lead">x</p></div>`,
		`#main p { color: blue; } p.lead { color: red; } .card > p { font-size: 12px; } p { font-size: 20px; }`)

	p := doc.FindTag("p")
	if got := styles[p].Get("color"); got != "blue" {
		t.Errorf("color = %q, want blue (id beats class)", got)
	}
	if got := styles[p].Get("font-size"); got != "12px" {
		t.Errorf("font-size = %q, want 12px (class beats element)", got)
	}
}

func TestSourceOrderAndImportant(t *testing.T) {
	doc, styles := compute(t,
		`<p style="color: green; margin: 1px 2px">x</p>`,
		`p { color: red !important; } p { margin-left: 9px; } p { margin-left: 7px; }`)

	p := doc.FindTag("p")
	if got := styles[p].Get("color"); got != "red" {
		t.Errorf("color = %q, want red (!important beats inline)", got)
	}
	if got := styles[p].Get("margin-left"); got != "2px" {
		t.Errorf("margin-left = %q, want 2px from inline shorthand", got)
	}
	if got := styles[p].Get("margin-top"); got != "1px" {
		t.Errorf("margin-top = %q, want 1px", got)
	}
}

func TestInheritance(t *testing.T) {
	doc, styles := compute(t,
		`<div class="side"><span>a</span><p class="own">b</p></div>`,
		`.side { color: #ffffff; background-color: #111; } .own { color: inherit; }`)

	span := doc.FindTag("span")
	if got := styles[span].Get("color"); got != "#ffffff" {
		t.Errorf("span color = %q, want inherited #ffffff", got)
	}
	if !styles[span]["color"].Inherited {
		t.Error("span color should be marked inherited")
	}
	if got := styles[span].Get("background-color"); got != "" {
		t.Errorf("background-color must not inherit, got %q", got)
	}
	p := doc.FindTag("p")
	if got := styles[p].Get("color"); got != "#ffffff" {
		t.Errorf("explicit inherit = %q", got)
	}
}

func TestBorderShorthand(t *testing.T) {
	doc, styles := compute(t, `<h2>x</h2>`, `h2 { border-bottom: 2px solid #111827; }`)
	h2 := doc.FindTag("h2")
	if got := styles[h2].Get("border-bottom-width"); got != "2px" {
		t.Errorf("border-bottom-width = %q", got)
	}
	if got := styles[h2].Get("border-bottom-color"); got != "#111827" {
		t.Errorf("border-bottom-color = %q", got)
	}
	if got := styles[h2].Get("border-top-width"); got != "" {
		t.Errorf("border-top-width = %q, want unset", got)
	}
}

func TestPseudoSelectorsNeverMatch(t *testing.T) {
	doc, styles := compute(t, `<a href="#">x</a>`, `a:hover { color: red; } a { color: blue; }`)
	if got := styles[doc.FindTag("a")].Get("color"); got != "blue" {
		t.Errorf("color = %q, want blue", got)
	}
}
