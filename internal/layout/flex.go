package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/gompdf/folio/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// flexItem is one child of a row flex container
type flexItem struct {
	node   *html.Node
	basis  float64 // hypothetical margin-box width
	grow   float64
	shrink float64
	size   float64
}

// layoutFlex lays out a flex container. Column containers fall back to
// normal flow with the row gap between children. Row containers support
// wrapping, grow and shrink factors, justify-content and align-items.
func (e *Engine) layoutFlex(b *BlockBox) float64 {
	st := b.Style
	width := b.ContentWidth()
	rowGap, colGap := flexGaps(st.Get("gap"), st.Get("row-gap"), st.Get("column-gap"), width, b.FontSize)
	if strings.HasPrefix(strings.TrimSpace(st.Get("flex-direction")), "column") {
		return e.layoutFlow(b, rowGap)
	}

	var items []*flexItem
	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xhtml.ElementNode || e.displayOf(c) == "none" {
			continue
		}
		items = append(items, e.newFlexItem(c, width))
	}

	wrap := strings.HasPrefix(strings.TrimSpace(st.Get("flex-wrap")), "wrap")
	var lines [][]*flexItem
	var line []*flexItem
	used := 0.0
	for _, it := range items {
		need := it.basis
		if len(line) > 0 {
			need += colGap
		}
		if wrap && len(line) > 0 && used+need > width+wrapTolerance {
			lines = append(lines, line)
			line, used, need = nil, 0, it.basis
		}
		line = append(line, it)
		used += need
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}

	top := b.ContentY()
	cursor := top
	for i, l := range lines {
		if i > 0 {
			cursor += rowGap
		}
		cursor += e.layoutFlexLine(b, l, b.ContentX(), cursor, width, colGap)
	}
	return cursor - top
}

// newFlexItem computes the flex factors and hypothetical size of a child
func (e *Engine) newFlexItem(n *html.Node, containerWidth float64) *flexItem {
	st := e.styles[n]
	fs := e.fontSize(n)
	it := &flexItem{node: n, shrink: 1}

	basis := "auto"
	if f := strings.Fields(st.Get("flex")); len(f) > 0 {
		switch {
		case f[0] == "none":
			it.shrink = 0
		case f[0] == "auto":
			it.grow = 1
		default:
			if g, err := strconv.ParseFloat(f[0], 64); err == nil {
				it.grow, basis = g, "0"
				if len(f) > 1 {
					if s, err := strconv.ParseFloat(f[1], 64); err == nil {
						it.shrink = s
					} else {
						basis = f[1]
					}
				}
				if len(f) > 2 {
					basis = f[2]
				}
			} else {
				it.grow, basis = 1, f[0]
			}
		}
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(st.Get("flex-grow")), 64); err == nil {
		it.grow = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(st.Get("flex-shrink")), 64); err == nil {
		it.shrink = v
	}
	if v := strings.TrimSpace(st.Get("flex-basis")); v != "" {
		basis = v
	}

	if n.IsElement("img") {
		it.basis = outerWidth(e.layoutImage(n, containerWidth))
		return it
	}

	probe := NewBlockBox(n, st)
	probe.FontSize = fs
	probe.parseBoxModel(containerWidth)
	margins := probe.MarginLeft + probe.MarginRight
	switch {
	case basis != "auto" && basis != "content":
		it.basis = parseLength(basis, containerWidth, fs, 0) + margins
	case !isAuto(st.Get("width")):
		probe.resolveWidth(containerWidth)
		it.basis = probe.Width + margins
	default:
		it.basis = math.Min(e.maxContentWidth(n), containerWidth)
	}
	return it
}

// layoutFlexLine distributes free space over one line of items, lays them
// out and aligns them on the cross axis. It returns the line height.
func (e *Engine) layoutFlexLine(b *BlockBox, items []*flexItem, x, top, width, gap float64) float64 {
	free := width - gap*float64(len(items)-1)
	var sumGrow, sumScaled float64
	for _, it := range items {
		it.size = it.basis
		free -= it.basis
		sumGrow += it.grow
		sumScaled += it.shrink * it.basis
	}
	switch {
	case free > 0 && sumGrow > 0:
		for _, it := range items {
			it.size += free * it.grow / sumGrow
		}
		free = 0
	case free < 0 && sumScaled > 0:
		for _, it := range items {
			it.size = math.Max(0, it.size+free*it.shrink*it.basis/sumScaled)
		}
		free = 0
	}

	lead, between := 0.0, gap
	if free > 0 {
		n := float64(len(items))
		switch strings.TrimSpace(b.Style.Get("justify-content")) {
		case "center":
			lead = free / 2
		case "flex-end", "end", "right":
			lead = free
		case "space-between":
			if len(items) > 1 {
				between += free / (n - 1)
			}
		case "space-around":
			lead = free / (2 * n)
			between += free / n
		case "space-evenly":
			lead = free / (n + 1)
			between += free / (n + 1)
		}
	}

	boxes := make([]Box, len(items))
	pen := x + lead
	lineHeight := 0.0
	for i, it := range items {
		var box Box
		if it.node.IsElement("img") {
			img := e.layoutImage(it.node, width)
			img.Translate(pen+img.MarginLeft, top+img.MarginTop)
			box = img
		} else {
			box = e.layoutBlockWidth(it.node, pen, top, 0, width, it.size)
		}
		b.AddChild(box)
		boxes[i] = box
		lineHeight = math.Max(lineHeight, outerHeight(box))
		pen += it.size + between
	}

	align := strings.TrimSpace(b.Style.Get("align-items"))
	for _, box := range boxes {
		self := align
		if v := strings.TrimSpace(e.styles[box.GetNode()].Get("align-self")); v != "" && v != "auto" {
			self = v
		}
		slack := lineHeight - outerHeight(box)
		switch self {
		case "center":
			box.Translate(0, slack/2)
		case "flex-end", "end":
			box.Translate(0, slack)
		case "flex-start", "start", "baseline":
		default:
			if block, ok := box.(*BlockBox); ok && !block.hasExplicitHeight() {
				block.Height += slack
			}
		}
	}
	return lineHeight
}

// flexGaps resolves the gap shorthand and its longhands into row and
// column gaps
func flexGaps(gap, rowGap, columnGap string, width, fontSize float64) (float64, float64) {
	f := strings.Fields(gap)
	row, col := "", ""
	switch len(f) {
	case 1:
		row, col = f[0], f[0]
	case 2:
		row, col = f[0], f[1]
	}
	if rowGap != "" {
		row = rowGap
	}
	if columnGap != "" {
		col = columnGap
	}
	return parseLength(row, width, fontSize, 0), parseLength(col, width, fontSize, 0)
}
