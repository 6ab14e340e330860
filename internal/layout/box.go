// Package layout turns a styled HTML tree into positioned boxes measured in
// CSS pixels. Coordinates are absolute: X and Y are the top-left corner of
// a box's border box.
package layout

import (
	"github.com/gompdf/folio/internal/parser/html"
)

// Box is a positioned element of the layout tree
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
	GetMarginTop() float64
	GetMarginBottom() float64
	GetMarginLeft() float64
	GetMarginRight() float64
	// Translate moves the box and everything inside it
	Translate(dx, dy float64)
	GetNode() *html.Node
}

// Walk calls fn for b and every descendant box in paint order
func Walk(b Box, fn func(Box)) {
	fn(b)
	if block, ok := b.(*BlockBox); ok {
		for _, c := range block.Children {
			Walk(c, fn)
		}
	}
}

// outerHeight is the height of a box including vertical margins
func outerHeight(b Box) float64 {
	return b.GetMarginTop() + b.GetHeight() + b.GetMarginBottom()
}

// outerWidth is the width of a box including horizontal margins
func outerWidth(b Box) float64 {
	return b.GetMarginLeft() + b.GetWidth() + b.GetMarginRight()
}
