// Package raster captures a laid-out HTML document as one tall bitmap.
//
// The document is styled and laid out at a fixed logical width, then
// painted at a supersampling factor onto an opaque canvas so the result
// stays crisp when it is later scaled onto a page.
package raster

import (
	"context"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"
	"github.com/gompdf/folio/internal/layout"
	"github.com/gompdf/folio/internal/parser/css"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/res"
	"github.com/gompdf/folio/internal/style"
	"github.com/gompdf/folio/internal/text"
	"github.com/gompdf/folio/pkg/errors"
)

const (
	// DefaultWidth is the logical capture width in CSS pixels: an A4 page
	// at 96 DPI.
	DefaultWidth = 794.0
	// DefaultScale is the supersampling factor.
	DefaultScale = 2.5

	// maxCanvasPixels bounds the memory a single capture may allocate.
	maxCanvasPixels = 150_000_000
)

// Options controls a capture
type Options struct {
	// Width is the logical layout width in CSS pixels
	Width float64
	// Scale is the number of device pixels per CSS pixel
	Scale float64
	// Background fills the canvas before painting; it is made opaque
	Background color.Color
}

// DefaultOptions returns a 794px wide capture at 2.5x on white
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Scale:      DefaultScale,
		Background: color.White,
	}
}

// Rasterizer renders a document into a bitmap
type Rasterizer interface {
	Capture(ctx context.Context, doc *html.Document, opts Options) (image.Image, error)
}

// Canvas is a Rasterizer painting with fogleman/gg
type Canvas struct {
	loader *res.Loader
	logger *log.Logger
}

// NewCanvas creates a Canvas resolving images and stylesheets with loader
func NewCanvas(loader *res.Loader, logger *log.Logger) *Canvas {
	if loader == nil {
		loader = res.NewLoader("")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Canvas{loader: loader, logger: logger}
}

// Capture styles, lays out and paints doc. The returned bitmap is
// ceil(Width*Scale) pixels wide and ceil(height*Scale) pixels tall, where
// height is the laid-out document height.
func (c *Canvas) Capture(ctx context.Context, doc *html.Document, opts Options) (image.Image, error) {
	if opts.Width <= 0 || opts.Scale <= 0 {
		return nil, errors.New(errors.ErrCodeCapture, "invalid capture size %.2fpx at %.2fx", opts.Width, opts.Scale)
	}
	if doc == nil || doc.Root == nil {
		return nil, errors.New(errors.ErrCodeCapture, "no document to capture")
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCapture, err, "capture canceled")
	}

	se := style.NewStyleEngine()
	if err := se.AddDocumentStyles(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCapture, err, "failed to read document styles")
	}
	c.addLinkedStyles(ctx, se, doc)

	// A private shaper keeps font faces confined to this capture.
	shaper := text.NewTextShaper()
	engine := layout.NewEngine(shaper, c.logger)
	engine.SetOptions(layout.Options{Width: opts.Width})
	engine.SetStyles(se.ComputeStyles(doc))

	root, err := engine.Layout(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCapture, err, "failed to lay out document")
	}

	height := layout.DocumentHeight(root)
	w := int(math.Ceil(opts.Width * opts.Scale))
	h := int(math.Ceil(height * opts.Scale))
	if h <= 0 {
		return nil, errors.New(errors.ErrCodeCapture, "document has no visible content")
	}
	if w*h > maxCanvasPixels {
		return nil, errors.New(errors.ErrCodeCapture, "document too large to capture: %dx%d pixels", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(opaque(opts.Background))
	dc.Clear()

	p := &painter{
		ctx:    ctx,
		dc:     dc,
		scale:  opts.Scale,
		loader: c.loader,
		shaper: shaper,
		logger: c.logger,
	}
	layout.Walk(root, p.paint)
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCapture, err, "capture canceled")
	}

	c.logger.Debug("captured document", "width", w, "height", h, "logical_height", height)
	return dc.Image(), nil
}

// addLinkedStyles loads <link rel="stylesheet"> references. A stylesheet
// that cannot be loaded is skipped.
func (c *Canvas) addLinkedStyles(ctx context.Context, se *style.StyleEngine, doc *html.Document) {
	parser := css.NewParser()
	doc.Root.Find(func(n *html.Node) bool {
		if !n.IsElement("link") {
			return false
		}
		rel, _ := n.AttrValue("rel")
		href, ok := n.AttrValue("href")
		if !ok || !strings.EqualFold(strings.TrimSpace(rel), "stylesheet") {
			return false
		}
		r, err := c.loader.LoadCSS(ctx, href)
		if err != nil {
			c.logger.Warn("skipping stylesheet", "href", href, "err", err)
			return false
		}
		sheet, err := parser.ParseString(string(r.Data))
		if err != nil {
			c.logger.Warn("skipping stylesheet", "href", href, "err", err)
			return false
		}
		se.AddStylesheet(sheet)
		return false
	})
}

// opaque drops the alpha channel of c
func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}
