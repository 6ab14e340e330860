package layout

import (
	"strconv"

	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/style"
)

// ImageBox represents an <img> element laid out as a replaced element. Src
// is resolved by the painter.
type ImageBox struct {
	Node   *html.Node
	Style  style.ComputedStyle
	X      float64
	Y      float64
	Width  float64
	Height float64

	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	Src string
}

// defaultImageSize is used when neither CSS nor attributes size an image
const defaultImageSize = 40.0

// layoutImage sizes an image from CSS width/height, falling back to the
// width and height attributes and finally a 40px square. A single given
// dimension makes the image square.
func (e *Engine) layoutImage(n *html.Node, containerWidth float64) *ImageBox {
	st := e.styles[n]
	fs := e.fontSize(n)
	b := &ImageBox{Node: n, Style: st}
	b.Src, _ = n.AttrValue("src")

	dim := func(prop, attr string) float64 {
		if v := st.Get(prop); !isAuto(v) {
			return parseLength(v, containerWidth, fs, 0)
		}
		if v, ok := n.AttrValue(attr); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return 0
	}
	w, h := dim("width", "width"), dim("height", "height")
	switch {
	case w == 0 && h == 0:
		w, h = defaultImageSize, defaultImageSize
	case w == 0:
		w = h
	case h == 0:
		h = w
	}
	b.Width, b.Height = w, h

	l := func(name string) float64 { return parseLength(st.Get(name), containerWidth, fs, 0) }
	b.MarginTop, b.MarginRight = l("margin-top"), l("margin-right")
	b.MarginBottom, b.MarginLeft = l("margin-bottom"), l("margin-left")
	return b
}

func (b *ImageBox) GetX() float64      { return b.X }
func (b *ImageBox) GetY() float64      { return b.Y }
func (b *ImageBox) GetWidth() float64  { return b.Width }
func (b *ImageBox) GetHeight() float64 { return b.Height }

func (b *ImageBox) GetMarginTop() float64    { return b.MarginTop }
func (b *ImageBox) GetMarginBottom() float64 { return b.MarginBottom }
func (b *ImageBox) GetMarginLeft() float64   { return b.MarginLeft }
func (b *ImageBox) GetMarginRight() float64  { return b.MarginRight }

func (b *ImageBox) Translate(dx, dy float64) { b.X, b.Y = b.X+dx, b.Y+dy }

func (b *ImageBox) GetNode() *html.Node { return b.Node }
