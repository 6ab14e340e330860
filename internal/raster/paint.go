package raster

import (
	"context"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"
	"github.com/gompdf/folio/internal/layout"
	"github.com/gompdf/folio/internal/res"
	"github.com/gompdf/folio/internal/style"
	"github.com/gompdf/folio/internal/text"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
)

// painter draws layout boxes onto a gg context. Layout coordinates are in
// CSS pixels; the painter multiplies them by scale itself because gg does
// not scale glyphs with its transform.
type painter struct {
	ctx    context.Context
	dc     *gg.Context
	scale  float64
	loader *res.Loader
	shaper *text.Shaper
	logger *log.Logger
}

func (p *painter) s(v float64) float64 { return v * p.scale }

func (p *painter) paint(b layout.Box) {
	if p.ctx.Err() != nil {
		return
	}
	switch box := b.(type) {
	case *layout.BlockBox:
		p.paintBlock(box)
	case *layout.InlineBox:
		p.paintText(box)
	case *layout.ImageBox:
		p.paintImage(box)
	}
}

// paintBlock draws the background and borders of a block
func (p *painter) paintBlock(b *layout.BlockBox) {
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	if v := strings.TrimSpace(b.Style.Get("visibility")); v == "hidden" {
		return
	}
	x, y, w, h := p.s(b.X), p.s(b.Y), p.s(b.Width), p.s(b.Height)
	radius := p.s(borderRadius(b.Style.Get("border-radius"), b.Width, b.Height, b.FontSize))

	if fill := p.backgroundPattern(b, x, y, w, h); fill != nil {
		p.dc.Push()
		p.dc.SetFillStyle(fill)
		if radius > 0 {
			p.dc.DrawRoundedRectangle(x, y, w, h, radius)
		} else {
			p.dc.DrawRectangle(x, y, w, h)
		}
		p.dc.Fill()
		p.dc.Pop()
	}

	p.paintBorders(b, x, y, w, h, radius)
}

// backgroundPattern resolves background-color or a linear-gradient
// background into a fill pattern
func (p *painter) backgroundPattern(b *layout.BlockBox, x, y, w, h float64) gg.Pattern {
	if c, ok := style.ParseColor(b.Style.Get("background-color")); ok {
		return gg.NewSolidPattern(c)
	}
	bg := b.Style.Get("background")
	if bg == "" {
		bg = b.Style.Get("background-image")
	}
	if strings.Contains(bg, "linear-gradient(") {
		return linearGradient(bg, x, y, w, h)
	}
	return nil
}

// paintBorders draws the four border edges. Uniform borders around a
// rounded box are stroked as one rounded rectangle.
func (p *painter) paintBorders(b *layout.BlockBox, x, y, w, h, radius float64) {
	type side struct {
		width float64
		color string
	}
	sides := [4]side{
		{b.BorderTop, b.Style.Get("border-top-color")},
		{b.BorderRight, b.Style.Get("border-right-color")},
		{b.BorderBottom, b.Style.Get("border-bottom-color")},
		{b.BorderLeft, b.Style.Get("border-left-color")},
	}
	colorOf := func(s side) (color.Color, bool) {
		if s.color == "" || s.color == "currentColor" {
			c, ok := style.ParseColor(b.Style.Get("color"))
			if !ok {
				return color.Black, true
			}
			return c, true
		}
		return style.ParseColor(s.color)
	}

	uniform := sides[0].width > 0
	for _, s := range sides[1:] {
		uniform = uniform && s.width == sides[0].width && s.color == sides[0].color
	}
	if uniform && radius > 0 {
		c, ok := colorOf(sides[0])
		if !ok {
			return
		}
		lw := p.s(sides[0].width)
		p.dc.SetColor(c)
		p.dc.SetLineWidth(lw)
		p.dc.DrawRoundedRectangle(x+lw/2, y+lw/2, w-lw, h-lw, math.Max(0, radius-lw/2))
		p.dc.Stroke()
		return
	}

	rects := [4][4]float64{
		{x, y, w, p.s(sides[0].width)},
		{x + w - p.s(sides[1].width), y, p.s(sides[1].width), h},
		{x, y + h - p.s(sides[2].width), w, p.s(sides[2].width)},
		{x, y, p.s(sides[3].width), h},
	}
	for i, s := range sides {
		if s.width <= 0 {
			continue
		}
		c, ok := colorOf(s)
		if !ok {
			continue
		}
		r := rects[i]
		p.dc.SetColor(c)
		p.dc.DrawRectangle(r[0], r[1], r[2], r[3])
		p.dc.Fill()
	}
}

// paintText draws a text run on its baseline
func (p *painter) paintText(t *layout.InlineBox) {
	if t.Text == "" || strings.TrimSpace(t.Style.Get("visibility")) == "hidden" {
		return
	}
	c, ok := style.ParseColor(t.Style.Get("color"))
	if !ok {
		c = color.Black
	}

	f := t.Font
	f.Size = p.s(f.Size)
	face, err := p.shaper.Face(f)
	if err != nil {
		p.logger.Warn("skipping text run", "text", t.Text, "err", err)
		return
	}
	p.dc.SetFontFace(face)
	p.dc.SetColor(c)

	x, baseline := p.s(t.X), p.s(t.Baseline)
	if t.LetterSpacing == 0 {
		p.dc.DrawString(t.Text, x, baseline)
	} else {
		pen := x
		for _, r := range t.Text {
			ch := string(r)
			p.dc.DrawString(ch, pen, baseline)
			w, _ := p.dc.MeasureString(ch)
			pen += w + p.s(t.LetterSpacing)
		}
	}

	if t.Underline {
		thickness := math.Max(1, f.Size/14)
		p.dc.SetLineWidth(thickness)
		uy := baseline + f.Size*0.1
		p.dc.DrawLine(x, uy, x+p.s(t.Width), uy)
		p.dc.Stroke()
	}
}

// paintImage draws a raster or SVG image scaled into its box. Images that
// fail to load are drawn as a grey placeholder.
func (p *painter) paintImage(b *layout.ImageBox) {
	x, y := p.s(b.X), p.s(b.Y)
	w, h := int(math.Round(p.s(b.Width))), int(math.Round(p.s(b.Height)))
	if w <= 0 || h <= 0 {
		return
	}

	img, err := p.loadImage(b.Src, w, h, strings.TrimSpace(b.Style.Get("object-fit")))
	if err != nil {
		p.logger.Warn("image unavailable", "src", truncate(b.Src, 64), "err", err)
		p.dc.SetRGB(0.9, 0.9, 0.9)
		p.dc.DrawRectangle(x, y, float64(w), float64(h))
		p.dc.Fill()
		return
	}

	radius := p.s(borderRadius(b.Style.Get("border-radius"), b.Width, b.Height, 16))
	p.dc.Push()
	if radius > 0 {
		p.dc.DrawRoundedRectangle(x, y, float64(w), float64(h), radius)
		p.dc.Clip()
	}
	p.dc.DrawImage(img, int(math.Round(x)), int(math.Round(y)))
	p.dc.ResetClip()
	p.dc.Pop()
}

// loadImage decodes src and scales it to w x h device pixels
func (p *painter) loadImage(src string, w, h int, fit string) (image.Image, error) {
	r, err := p.loader.LoadImage(p.ctx, src)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if r.IsSVG() {
		icon, err := oksvg.ReadIconStream(r.GetReader(), oksvg.IgnoreErrorMode)
		if err != nil {
			return nil, err
		}
		icon.SetTarget(0, 0, float64(w), float64(h))
		scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
		icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
		return dst, nil
	}

	decoded, _, err := image.Decode(r.GetReader())
	if err != nil {
		return nil, err
	}
	sr := decoded.Bounds()
	if fit == "cover" {
		sr = coverRect(sr, w, h)
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), decoded, sr, xdraw.Over, nil)
	return dst, nil
}

// coverRect crops r to the aspect ratio of w x h around its center
func coverRect(r image.Rectangle, w, h int) image.Rectangle {
	sw, sh := float64(r.Dx()), float64(r.Dy())
	want := float64(w) / float64(h)
	if sw/sh > want {
		cw := int(sh * want)
		x0 := r.Min.X + (r.Dx()-cw)/2
		return image.Rect(x0, r.Min.Y, x0+cw, r.Max.Y)
	}
	ch := int(sw / want)
	y0 := r.Min.Y + (r.Dy()-ch)/2
	return image.Rect(r.Min.X, y0, r.Max.X, y0+ch)
}

// borderRadius resolves the first border-radius value in CSS pixels,
// clamped to half the shorter side
func borderRadius(value string, w, h, fontSize float64) float64 {
	f := strings.Fields(value)
	if len(f) == 0 {
		return 0
	}
	limit := math.Min(w, h) / 2
	v := f[0]
	var r float64
	if strings.HasSuffix(v, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0
		}
		r = math.Min(w, h) * pct / 100
	} else if strings.HasSuffix(v, "em") && !strings.HasSuffix(v, "rem") {
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "em"), 64)
		if err != nil {
			return 0
		}
		r = n * fontSize
	} else {
		n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSuffix(v, "px"), "rem"), 64)
		if err != nil {
			return 0
		}
		r = n
		if strings.HasSuffix(v, "rem") {
			r *= 16
		}
	}
	return math.Max(0, math.Min(r, limit))
}

// linearGradient builds a gg gradient from a CSS linear-gradient value.
// Angles in deg and the "to <side>" keywords are understood; stops without
// a position are spread evenly.
func linearGradient(value string, x, y, w, h float64) gg.Pattern {
	start := strings.Index(value, "linear-gradient(")
	body := value[start+len("linear-gradient("):]
	if end := strings.LastIndexByte(body, ')'); end >= 0 {
		body = body[:end]
	}
	args := splitArgs(body)
	if len(args) == 0 {
		return nil
	}

	angle := 180.0
	first := strings.TrimSpace(args[0])
	switch {
	case strings.HasSuffix(first, "deg"):
		if a, err := strconv.ParseFloat(strings.TrimSuffix(first, "deg"), 64); err == nil {
			angle = a
		}
		args = args[1:]
	case strings.HasPrefix(first, "to "):
		angle = map[string]float64{
			"to top": 0, "to right": 90, "to bottom": 180, "to left": 270,
			"to top right": 45, "to bottom right": 135, "to bottom left": 225, "to top left": 315,
		}[strings.Join(strings.Fields(first), " ")]
		args = args[1:]
	}

	type stop struct {
		c   color.Color
		pos float64
	}
	var stops []stop
	for _, a := range args {
		f := strings.Fields(strings.TrimSpace(a))
		if len(f) == 0 {
			continue
		}
		c, ok := style.ParseColor(f[0])
		if !ok {
			if strings.HasPrefix(f[0], "rgb") {
				c, ok = style.ParseColor(strings.TrimSpace(a[:strings.LastIndexByte(a, ')')+1]))
			}
			if !ok {
				continue
			}
		}
		pos := -1.0
		if last := f[len(f)-1]; strings.HasSuffix(last, "%") {
			if v, err := strconv.ParseFloat(strings.TrimSuffix(last, "%"), 64); err == nil {
				pos = v / 100
			}
		}
		stops = append(stops, stop{c, pos})
	}
	if len(stops) == 0 {
		return nil
	}
	if len(stops) == 1 {
		return gg.NewSolidPattern(stops[0].c)
	}

	rad := angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := math.Abs(w/2*dx) + math.Abs(h/2*dy)
	cx, cy := x+w/2, y+h/2
	g := gg.NewLinearGradient(cx-dx*half, cy-dy*half, cx+dx*half, cy+dy*half)
	for i, s := range stops {
		pos := s.pos
		if pos < 0 {
			pos = float64(i) / float64(len(stops)-1)
		}
		g.AddColorStop(pos, s.c)
	}
	return g
}

// splitArgs splits a function argument list on top-level commas
func splitArgs(s string) []string {
	var out []string
	depth, last := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	return append(out, s[last:])
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
