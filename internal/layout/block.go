package layout

import (
	"math"
	"strings"

	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

// BlockBox represents a block-level box in the layout
type BlockBox struct {
	Node          *html.Node
	Style         style.ComputedStyle
	X             float64
	Y             float64
	Width         float64
	Height        float64
	MarginTop     float64
	MarginRight   float64
	MarginBottom  float64
	MarginLeft    float64
	PaddingTop    float64
	PaddingRight  float64
	PaddingBottom float64
	PaddingLeft   float64
	BorderTop     float64
	BorderRight   float64
	BorderBottom  float64
	BorderLeft    float64
	FontSize      float64
	Children      []Box
}

// NewBlockBox creates a new block box for an element
func NewBlockBox(node *html.Node, computedStyle style.ComputedStyle) *BlockBox {
	return &BlockBox{
		Node:     node,
		Style:    computedStyle,
		Children: []Box{},
	}
}

// parseBoxModel resolves margin, padding and border widths. Percentages are
// taken of the containing block width.
func (b *BlockBox) parseBoxModel(containerWidth float64) {
	l := func(name string) float64 {
		return parseLength(b.Style.Get(name), containerWidth, b.FontSize, 0)
	}
	b.MarginTop, b.MarginRight = l("margin-top"), l("margin-right")
	b.MarginBottom, b.MarginLeft = l("margin-bottom"), l("margin-left")

	b.PaddingTop, b.PaddingRight = l("padding-top"), l("padding-right")
	b.PaddingBottom, b.PaddingLeft = l("padding-bottom"), l("padding-left")

	b.BorderTop, b.BorderRight = l("border-top-width"), l("border-right-width")
	b.BorderBottom, b.BorderLeft = l("border-bottom-width"), l("border-left-width")
}

// resolveWidth computes the border-box width inside a containing block of
// the given width and settles auto margins.
func (b *BlockBox) resolveWidth(containerWidth float64) {
	frame := b.horizontalFrame()
	borderBox := strings.TrimSpace(b.Style.Get("box-sizing")) == "border-box"
	toBorderBox := func(v float64) float64 {
		if borderBox {
			return v
		}
		return v + frame
	}

	autoWidth := isAuto(b.Style.Get("width"))
	width := containerWidth - b.MarginLeft - b.MarginRight
	if !autoWidth {
		width = toBorderBox(parseLength(b.Style.Get("width"), containerWidth, b.FontSize, 0))
	}
	if v := b.Style.Get("max-width"); !isAuto(v) && v != "none" {
		width = math.Min(width, toBorderBox(parseLength(v, containerWidth, b.FontSize, width)))
	}
	if v := b.Style.Get("min-width"); !isAuto(v) {
		width = math.Max(width, toBorderBox(parseLength(v, containerWidth, b.FontSize, 0)))
	}
	b.Width = math.Max(width, frame)

	free := containerWidth - b.Width - b.MarginLeft - b.MarginRight
	if free <= 0 {
		return
	}
	leftAuto, rightAuto := explicitAuto(b.Style.Get("margin-left")), explicitAuto(b.Style.Get("margin-right"))
	switch {
	case leftAuto && rightAuto:
		b.MarginLeft, b.MarginRight = free/2, free/2
	case leftAuto:
		b.MarginLeft = free
	}
}

func explicitAuto(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "auto")
}

// resolveHeight applies explicit height and min-height to a content height
func (b *BlockBox) resolveHeight(contentHeight, containerWidth float64) {
	frame := b.verticalFrame()
	height := contentHeight + frame
	borderBox := strings.TrimSpace(b.Style.Get("box-sizing")) == "border-box"
	toBorderBox := func(v float64) float64 {
		if borderBox {
			return v
		}
		return v + frame
	}
	if v := b.Style.Get("height"); !isAuto(v) && !strings.HasSuffix(strings.TrimSpace(v), "%") {
		height = toBorderBox(parseLength(v, containerWidth, b.FontSize, contentHeight))
	}
	if v := b.Style.Get("min-height"); !isAuto(v) && !strings.HasSuffix(strings.TrimSpace(v), "%") {
		height = math.Max(height, toBorderBox(parseLength(v, containerWidth, b.FontSize, 0)))
	}
	b.Height = math.Max(height, frame)
}

func (b *BlockBox) horizontalFrame() float64 {
	return b.PaddingLeft + b.PaddingRight + b.BorderLeft + b.BorderRight
}

func (b *BlockBox) verticalFrame() float64 {
	return b.PaddingTop + b.PaddingBottom + b.BorderTop + b.BorderBottom
}

// ContentX returns the left edge of the content box
func (b *BlockBox) ContentX() float64 {
	return b.X + b.BorderLeft + b.PaddingLeft
}

// ContentY returns the top edge of the content box
func (b *BlockBox) ContentY() float64 {
	return b.Y + b.BorderTop + b.PaddingTop
}

// ContentWidth returns the width of the content box
func (b *BlockBox) ContentWidth() float64 {
	return math.Max(0, b.Width-b.horizontalFrame())
}

// hasExplicitHeight reports whether the height is fixed by CSS
func (b *BlockBox) hasExplicitHeight() bool {
	v := b.Style.Get("height")
	return !isAuto(v) && !strings.HasSuffix(strings.TrimSpace(v), "%")
}

// GetX returns the x position of the box
func (b *BlockBox) GetX() float64 {
	return b.X
}

// GetY returns the y position of the box
func (b *BlockBox) GetY() float64 {
	return b.Y
}

// GetWidth returns the width of the box
func (b *BlockBox) GetWidth() float64 {
	return b.Width
}

// GetHeight returns the height of the box
func (b *BlockBox) GetHeight() float64 {
	return b.Height
}

// GetMarginTop returns the top margin of the box
func (b *BlockBox) GetMarginTop() float64 {
	return b.MarginTop
}

// GetMarginBottom returns the bottom margin of the box
func (b *BlockBox) GetMarginBottom() float64 {
	return b.MarginBottom
}

// GetMarginLeft returns the left margin of the box
func (b *BlockBox) GetMarginLeft() float64 {
	return b.MarginLeft
}

// GetMarginRight returns the right margin of the box
func (b *BlockBox) GetMarginRight() float64 {
	return b.MarginRight
}

// Translate moves the box and all of its descendants
func (b *BlockBox) Translate(dx, dy float64) {
	b.X += dx
	b.Y += dy
	for _, c := range b.Children {
		c.Translate(dx, dy)
	}
}

// AddChild adds a child box
func (b *BlockBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

// GetNode returns the HTML node associated with this box
func (b *BlockBox) GetNode() *html.Node {
	return b.Node
}
