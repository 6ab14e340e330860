package layout

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
	"github.com/gompdf/folio/internal/text"
	xhtml "golang.org/x/net/html"
)

// ErrNoBody is returned when a document has no <body> to lay out
var ErrNoBody = errors.New("document has no body element")

// Options represents options for the layout engine
type Options struct {
	// Width is the viewport width in CSS pixels
	Width float64
}

// Engine handles the layout process
type Engine struct {
	options   Options
	styles    map[*html.Node]style.ComputedStyle
	fontSizes map[*html.Node]float64
	shaper    *text.Shaper
	logger    *log.Logger
}

// NewEngine creates a new layout engine measuring text with shaper
func NewEngine(shaper *text.Shaper, logger *log.Logger) *Engine {
	if shaper == nil {
		shaper = text.NewTextShaper()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		options: Options{Width: 794},
		styles:  make(map[*html.Node]style.ComputedStyle),
		shaper:  shaper,
		logger:  logger,
	}
}

// SetOptions sets the options for the layout engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// SetStyles sets the computed styles for the layout engine
func (e *Engine) SetStyles(styles map[*html.Node]style.ComputedStyle) {
	e.styles = styles
}

// Shaper returns the text shaper used for measurement
func (e *Engine) Shaper() *text.Shaper {
	return e.shaper
}

// Layout creates a layout tree rooted at the document body. The returned
// box spans the full viewport width; its height is the document height.
func (e *Engine) Layout(doc *html.Document) (*BlockBox, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrNoBody
	}
	body := doc.FindTag("body")
	if body == nil {
		return nil, ErrNoBody
	}

	e.fontSizes = make(map[*html.Node]float64)
	e.computeFontSizes(doc.Root, rootFontSize)

	root := e.layoutBlock(body, 0, 0, 0, e.options.Width)
	e.logger.Debug("layout complete",
		"width", e.options.Width,
		"height", DocumentHeight(root),
		"boxes", countBoxes(root))
	return root, nil
}

// DocumentHeight returns the height covered by the root box and its margins
func DocumentHeight(root *BlockBox) float64 {
	if root == nil {
		return 0
	}
	return root.Y + root.Height + root.MarginBottom
}

func countBoxes(b Box) int {
	n := 0
	Walk(b, func(Box) { n++ })
	return n
}

// computeFontSizes resolves font sizes top-down so em units compound the
// way browsers do.
func (e *Engine) computeFontSizes(n *html.Node, parent float64) {
	size := parent
	if n.Type == xhtml.ElementNode {
		if prop, ok := e.styles[n]["font-size"]; ok && !prop.Inherited {
			size = resolveFontSize(prop.Value, parent)
		}
		e.fontSizes[n] = size
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.computeFontSizes(c, size)
	}
}

func (e *Engine) fontSize(n *html.Node) float64 {
	if fs, ok := e.fontSizes[n]; ok {
		return fs
	}
	return rootFontSize
}

// displayOf returns the display value of a node, defaulting by tag name
func (e *Engine) displayOf(n *html.Node) string {
	if n.Type == xhtml.TextNode {
		return "inline"
	}
	if n.Type != xhtml.ElementNode {
		return "none"
	}
	if d := strings.TrimSpace(e.styles[n].Get("display")); d != "" {
		return d
	}
	if n.IsElement("li") {
		return "list-item"
	}
	if isInlineTag(n.Data) {
		return "inline"
	}
	return "block"
}

// isInlineTag reports whether a tag name is inline-level by default
func isInlineTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "a", "abbr", "b", "br", "code", "em", "i", "img", "label", "mark",
		"s", "small", "span", "strong", "sub", "sup", "time", "u":
		return true
	}
	return false
}

// isInlineLevel reports whether a node takes part in an inline formatting
// context of its parent
func (e *Engine) isInlineLevel(n *html.Node) bool {
	switch e.displayOf(n) {
	case "inline", "inline-block", "inline-flex":
		return true
	}
	return false
}

// layoutBlock lays out a block-level element. y is the bottom of the
// previous sibling's margin box and prevMargin its bottom margin, which
// collapses with this box's top margin.
func (e *Engine) layoutBlock(n *html.Node, x, y, prevMargin, containerWidth float64) *BlockBox {
	return e.layoutBlockWidth(n, x, y, prevMargin, containerWidth, -1)
}

// layoutBlockWidth is layoutBlock with the margin-box width fixed to outer
// when outer is not negative, as flex items are sized by their container.
func (e *Engine) layoutBlockWidth(n *html.Node, x, y, prevMargin, containerWidth, outer float64) *BlockBox {
	b := NewBlockBox(n, e.styles[n])
	b.FontSize = e.fontSize(n)
	b.parseBoxModel(containerWidth)
	if outer >= 0 {
		b.Width = math.Max(outer-b.MarginLeft-b.MarginRight, b.horizontalFrame())
	} else {
		b.resolveWidth(containerWidth)
	}

	b.X = x + b.MarginLeft
	b.Y = y + b.MarginTop - math.Min(prevMargin, b.MarginTop)

	var contentHeight float64
	switch e.displayOf(n) {
	case "flex", "inline-flex":
		contentHeight = e.layoutFlex(b)
	default:
		contentHeight = e.layoutFlow(b, 0)
	}
	b.resolveHeight(contentHeight, containerWidth)

	if e.displayOf(n) == "list-item" {
		e.addMarker(b)
	}
	return b
}

// layoutFlow lays out the children of b in normal flow, grouping runs of
// inline-level children into anonymous line boxes. gap adds space between
// block children. It returns the content height.
func (e *Engine) layoutFlow(b *BlockBox, gap float64) float64 {
	x, top, width := b.ContentX(), b.ContentY(), b.ContentWidth()
	cursor := top
	prevMargin := 0.0
	placed := 0

	var inline []*html.Node
	flush := func() {
		if len(inline) == 0 {
			return
		}
		if h := e.layoutInline(b, inline, x, cursor, width); h > 0 {
			cursor += h
			prevMargin = 0
			placed++
		}
		inline = nil
	}

	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xhtml.TextNode && c.Type != xhtml.ElementNode {
			continue
		}
		if e.displayOf(c) == "none" {
			continue
		}
		if e.isInlineLevel(c) {
			inline = append(inline, c)
			continue
		}
		flush()
		if placed > 0 {
			cursor += gap
		}
		var child Box
		if c.IsElement("img") {
			img := e.layoutImage(c, width)
			img.Translate(x+img.MarginLeft, cursor+img.MarginTop-math.Min(prevMargin, img.MarginTop))
			child = img
		} else {
			child = e.layoutBlock(c, x, cursor, prevMargin, width)
		}
		b.AddChild(child)
		cursor = child.GetY() + child.GetHeight() + child.GetMarginBottom()
		prevMargin = child.GetMarginBottom()
		placed++
	}
	flush()

	return cursor - top
}

// addMarker places a list marker to the left of the first line of an item
func (e *Engine) addMarker(b *BlockBox) {
	marker := listMarker(b.Node, b.Style.Get("list-style-type"))
	if marker == "" {
		return
	}
	f := fontFor(b.Style, b.FontSize)
	f.Bold = false

	baseline := 0.0
	for _, c := range b.Children {
		if t, ok := c.(*InlineBox); ok {
			baseline = t.Baseline
			break
		}
	}
	if baseline == 0 {
		ascent, _ := e.shaper.Metrics(f)
		baseline = b.ContentY() + ascent
	}

	w := e.shaper.MeasureText(marker, f)
	m := NewTextBox(b.Node, b.Style, marker)
	m.Font = f
	m.Width = w
	m.X = b.ContentX() - w - b.FontSize*0.5
	m.Baseline = baseline
	m.Height = resolveLineHeight(b.Style.Get("line-height"), b.FontSize)
	m.Y = baseline - m.Height*0.75
	b.AddChild(m)
}

// listMarker returns the marker text for a list item
func listMarker(li *html.Node, listStyle string) string {
	switch strings.TrimSpace(listStyle) {
	case "none":
		return ""
	case "decimal":
		n := 1
		for s := li.PrevSibling; s != nil; s = s.PrevSibling {
			if s.IsElement("li") {
				n++
			}
		}
		return strconv.Itoa(n) + "."
	case "circle":
		return "◦"
	case "square":
		return "▪"
	}
	return "•"
}

// maxContentWidth estimates the narrowest width at which n lays out
// without wrapping, including its own margins, padding and borders.
func (e *Engine) maxContentWidth(n *html.Node) float64 {
	if n.Type == xhtml.TextNode {
		words := text.SplitIntoWords(n.Data)
		if len(words) == 0 {
			return 0
		}
		st := e.styles[n.Parent]
		fs := e.fontSize(n.Parent)
		content := applyTextTransform(strings.Join(words, " "), st.Get("text-transform"))
		spacing := parseLength(st.Get("letter-spacing"), fs, fs, 0)
		return e.shaper.MeasureText(content, fontFor(st, fs)) + spacing*float64(len([]rune(content)))
	}
	if n.Type != xhtml.ElementNode || e.displayOf(n) == "none" {
		return 0
	}
	if n.IsElement("img") {
		return outerWidth(e.layoutImage(n, 0))
	}

	b := NewBlockBox(n, e.styles[n])
	b.FontSize = e.fontSize(n)
	b.parseBoxModel(0)
	frame := b.MarginLeft + b.MarginRight + b.horizontalFrame()
	if v := b.Style.Get("width"); !isAuto(v) && !strings.HasSuffix(strings.TrimSpace(v), "%") {
		w := parseLength(v, 0, b.FontSize, 0)
		if strings.TrimSpace(b.Style.Get("box-sizing")) == "border-box" {
			return w + b.MarginLeft + b.MarginRight
		}
		return w + frame
	}

	disp := e.displayOf(n)
	row := (disp == "flex" || disp == "inline-flex") && !strings.HasPrefix(b.Style.Get("flex-direction"), "column")
	gap := parseLength(firstField(b.Style.Get("column-gap"), b.Style.Get("gap")), 0, b.FontSize, 0)

	var content, line float64
	items := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w := e.maxContentWidth(c)
		switch {
		case row:
			if w > 0 || c.Type == xhtml.ElementNode {
				if items > 0 {
					content += gap
				}
				content += w
				items++
			}
		case e.isInlineLevel(c):
			line += w
			if c.Type == xhtml.TextNode && line > 0 && strings.TrimSpace(c.Data) != c.Data {
				line += e.shaper.MeasureText(" ", fontFor(b.Style, b.FontSize))
			}
		default:
			content = math.Max(content, math.Max(line, w))
			line = 0
		}
	}
	return math.Max(content, line) + frame
}

// firstField returns the first whitespace separated field of the first
// non-empty value
func firstField(values ...string) string {
	for _, v := range values {
		if f := strings.Fields(v); len(f) > 0 {
			return f[0]
		}
	}
	return ""
}
