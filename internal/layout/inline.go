package layout

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
	"github.com/gompdf/folio/internal/text"
	xhtml "golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InlineBox is a run of text set in one font on one line
type InlineBox struct {
	Node          *html.Node
	Style         style.ComputedStyle
	X             float64
	Y             float64
	Width         float64
	Height        float64
	Baseline      float64
	Text          string
	Font          text.Font
	LetterSpacing float64
	Underline     bool
}

// NewTextBox creates a new inline box for text content
func NewTextBox(node *html.Node, computedStyle style.ComputedStyle, content string) *InlineBox {
	return &InlineBox{
		Node:  node,
		Style: computedStyle,
		Text:  content,
	}
}

func (b *InlineBox) GetX() float64            { return b.X }
func (b *InlineBox) GetY() float64            { return b.Y }
func (b *InlineBox) GetWidth() float64        { return b.Width }
func (b *InlineBox) GetHeight() float64       { return b.Height }
func (b *InlineBox) GetMarginTop() float64    { return 0 }
func (b *InlineBox) GetMarginBottom() float64 { return 0 }
func (b *InlineBox) GetMarginLeft() float64   { return 0 }
func (b *InlineBox) GetMarginRight() float64  { return 0 }
func (b *InlineBox) GetNode() *html.Node      { return b.Node }

// Translate moves the text run
func (b *InlineBox) Translate(dx, dy float64) {
	b.X += dx
	b.Y += dy
	b.Baseline += dy
}

// inlineItem is one unbreakable piece of an inline formatting context: a
// word, an atomic box or a forced break.
type inlineItem struct {
	word       string
	node       *html.Node
	style      style.ComputedStyle
	font       text.Font
	spacing    float64
	lineHeight float64
	width      float64
	spaceWidth float64
	spaceAfter bool
	atom       Box
	breakLine  bool
	nowrap     bool
}

// collectInlineItems walks inline content collecting words, atoms and
// breaks. Whitespace collapses to single inter-word spaces.
func (e *Engine) collectInlineItems(n *html.Node, width float64, out *[]inlineItem) {
	switch {
	case n.Type == xhtml.TextNode:
		e.collectWords(n, out)
		return
	case n.Type != xhtml.ElementNode:
		return
	}

	disp := e.displayOf(n)
	switch {
	case disp == "none":
		return
	case n.IsElement("br"):
		*out = append(*out, inlineItem{breakLine: true})
		return
	case n.IsElement("img"):
		img := e.layoutImage(n, width)
		*out = append(*out, inlineItem{atom: img, width: outerWidth(img)})
		return
	case disp == "inline-block" || disp == "block" || disp == "flex":
		w := math.Min(e.maxContentWidth(n), width)
		box := e.layoutBlock(n, 0, 0, 0, w)
		*out = append(*out, inlineItem{atom: box, width: outerWidth(box)})
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.collectInlineItems(c, width, out)
	}
}

// collectWords splits a text node into word items styled by its parent
func (e *Engine) collectWords(n *html.Node, out *[]inlineItem) {
	parent := n.Parent
	st := e.styles[parent]
	fs := e.fontSize(parent)
	f := fontFor(st, fs)
	content := applyTextTransform(n.Data, st.Get("text-transform"))
	spacing := parseLength(st.Get("letter-spacing"), fs, fs, 0)
	lh := resolveLineHeight(st.Get("line-height"), fs)
	nowrap := strings.TrimSpace(st.Get("white-space")) == "nowrap"

	space := e.shaper.MeasureText(" ", f) + spacing
	if content != "" && unicode.IsSpace(firstRune(content)) && len(*out) > 0 {
		prev := &(*out)[len(*out)-1]
		prev.spaceAfter = true
		if prev.spaceWidth == 0 {
			prev.spaceWidth = space
		}
	}
	words := text.SplitIntoWords(content)
	for i, w := range words {
		*out = append(*out, inlineItem{
			word:       w,
			node:       parent,
			style:      st,
			font:       f,
			spacing:    spacing,
			lineHeight: lh,
			width:      e.shaper.MeasureText(w, f) + spacing*float64(utf8.RuneCountInString(w)),
			spaceWidth: space,
			spaceAfter: i < len(words)-1 || unicode.IsSpace(lastRune(content)),
			nowrap:     nowrap,
		})
	}
}

// wrapTolerance absorbs kerning differences between measuring a phrase
// whole and measuring it word by word.
const wrapTolerance = 0.5

// lineBuilder accumulates items for one line
type lineBuilder struct {
	items []inlineItem
	width float64
}

// layoutInline lays out a run of inline nodes inside container, wrapping at
// width. Boxes are appended to container and the total height is returned.
func (e *Engine) layoutInline(container *BlockBox, nodes []*html.Node, x, y, width float64) float64 {
	var items []inlineItem
	for _, n := range nodes {
		e.collectInlineItems(n, width, &items)
	}
	if len(items) == 0 {
		return 0
	}

	strutFont := fontFor(container.Style, container.FontSize)
	strut := resolveLineHeight(container.Style.Get("line-height"), container.FontSize)
	align := strings.TrimSpace(container.Style.Get("text-align"))

	cursor := y
	line := &lineBuilder{}
	flush := func(force bool) {
		if len(line.items) == 0 && !force {
			return
		}
		cursor += e.placeLine(container, line, x, cursor, width, align, strut, strutFont)
		line = &lineBuilder{}
	}

	for i, it := range items {
		if it.breakLine {
			flush(true)
			continue
		}
		gap := 0.0
		if len(line.items) > 0 && items[i-1].spaceAfter {
			gap = items[i-1].spaceWidth
		}
		if len(line.items) > 0 && line.width+gap+it.width > width+wrapTolerance && !it.nowrap {
			flush(false)
			gap = 0
		}
		line.width += gap + it.width
		line.items = append(line.items, it)
	}
	flush(false)

	return cursor - y
}

// placeLine positions one line of items and returns its height
func (e *Engine) placeLine(container *BlockBox, line *lineBuilder, x, top, width float64, align string, strut float64, strutFont text.Font) float64 {
	ascent, descent := e.shaper.Metrics(strutFont)
	lineHeight := strut
	for _, it := range line.items {
		if it.atom != nil {
			ascent = math.Max(ascent, outerHeight(it.atom))
			continue
		}
		a, d := e.shaper.Metrics(it.font)
		ascent, descent = math.Max(ascent, a), math.Max(descent, d)
		lineHeight = math.Max(lineHeight, it.lineHeight)
	}
	lineHeight = math.Max(lineHeight, ascent+descent)
	baseline := top + (lineHeight-(ascent+descent))/2 + ascent

	offset := 0.0
	switch align {
	case "center":
		offset = (width - line.width) / 2
	case "right", "end":
		offset = width - line.width
	}
	pen := x + math.Max(0, offset)

	var run *InlineBox
	for i, it := range line.items {
		if i > 0 && line.items[i-1].spaceAfter {
			pen += line.items[i-1].spaceWidth
			if run != nil && it.atom == nil && it.node == run.Node {
				run.Text += " "
				run.Width += line.items[i-1].spaceWidth
			} else {
				run = nil
			}
		}

		if it.atom != nil {
			run = nil
			it.atom.Translate(
				pen+it.atom.GetMarginLeft()-it.atom.GetX(),
				baseline-it.atom.GetHeight()-it.atom.GetMarginBottom()-it.atom.GetY(),
			)
			container.AddChild(it.atom)
			pen += it.width
			continue
		}

		if run == nil || run.Node != it.node {
			run = NewTextBox(it.node, it.style, "")
			run.X = pen
			run.Y = top
			run.Height = lineHeight
			run.Baseline = baseline
			run.Font = it.font
			run.LetterSpacing = it.spacing
			run.Underline = strings.Contains(it.style.Get("text-decoration"), "underline")
			container.AddChild(run)
		}
		run.Text += it.word
		run.Width += it.width
		pen += it.width
	}
	return lineHeight
}

// fontFor maps computed font properties onto a text.Font
func fontFor(st style.ComputedStyle, size float64) text.Font {
	weight := strings.ToLower(strings.TrimSpace(st.Get("font-weight")))
	family := strings.ToLower(st.Get("font-family"))
	fontStyle := strings.ToLower(st.Get("font-style"))
	return text.Font{
		Bold:   weight == "bold" || weight == "bolder" || numericWeight(weight) >= 600,
		Italic: fontStyle == "italic" || fontStyle == "oblique",
		Mono:   strings.Contains(family, "mono") || strings.Contains(family, "courier") || strings.Contains(family, "consolas"),
		Size:   size,
	}
}

func numericWeight(w string) int {
	n, err := strconv.Atoi(w)
	if err != nil {
		return 0
	}
	return n
}

// applyTextTransform implements the text-transform property
func applyTextTransform(s, transform string) string {
	switch strings.TrimSpace(transform) {
	case "uppercase":
		return cases.Upper(language.Und).String(s)
	case "lowercase":
		return cases.Lower(language.Und).String(s)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(s)
	}
	return s
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
