package css

import "testing"

func TestParseRules(t *testing.T) {
	sheet, err := NewParser().ParseString(`
		/* header */
		@import url("x.css");
		h1, .title   span { font-size: 22pt; color: #111827 !important; }
		@media print { h1 { color: red; } }
		@page { margin: 10mm; }
		.bar { background-image: url(data:image/png;base64,AAAA); width: 50%; }
	`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(sheet.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(sheet.Rules))
	}

	first := sheet.Rules[0]
	if len(first.Selectors) != 2 || first.Selectors[1] != ".title span" {
		t.Errorf("Selectors = %q", first.Selectors)
	}
	if len(first.Declarations) != 2 {
		t.Fatalf("len(Declarations) = %d, want 2", len(first.Declarations))
	}
	color := first.Declarations[1]
	if color.Property != "color" || color.Value != "#111827" || !color.Important {
		t.Errorf("color declaration = %+v", color)
	}

	bar := sheet.Rules[1]
	if got := bar.Declarations[0].Value; got != "url(data:image/png;base64,AAAA)" {
		t.Errorf("data url value = %q", got)
	}
	if got := bar.Declarations[1].Property; got != "width" {
		t.Errorf("second property = %q, want width", got)
	}
}

func TestParseDeclarations(t *testing.T) {
	decls := NewParser().ParseDeclarations("Margin: 0 0 2mm 0; ; font-family: 'A;B', sans-serif; broken")
	if len(decls) != 2 {
		t.Fatalf("len = %d, want 2", len(decls))
	}
	if decls[0].Property != "margin" {
		t.Errorf("property not lowercased: %q", decls[0].Property)
	}
	if decls[1].Value != "'A;B', sans-serif" {
		t.Errorf("quoted value = %q", decls[1].Value)
	}
}
