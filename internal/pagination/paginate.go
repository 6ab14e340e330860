// Package pagination slices one tall content bitmap into page-sized bands
// and writes each band as a page image.
package pagination

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/charmbracelet/log"
	"github.com/gompdf/folio/internal/render/pdf"
	"github.com/gompdf/folio/pkg/errors"
	"golang.org/x/image/draw"
)

// pageCountTolerance absorbs floating point noise when L is an exact
// multiple of the content height.
const pageCountTolerance = 1e-9

// Slice is one page worth of the bitmap
type Slice struct {
	Index int
	// LogicalTop and LogicalHeight are in page units
	LogicalTop    float64
	LogicalHeight float64
	// PixelStart is inclusive, PixelEnd exclusive
	PixelStart int
	PixelEnd   int
}

// Rows is the number of bitmap rows in the slice
func (s Slice) Rows() int {
	return s.PixelEnd - s.PixelStart
}

// Plan is the full set of slices for one bitmap
type Plan struct {
	ContentWidth  float64
	ContentHeight float64
	LogicalHeight float64
	PixelWidth    int
	PixelHeight   int
	Slices        []Slice
}

// LogicalHeight is the bitmap height in page units when its width is
// scaled to contentWidth
func LogicalHeight(contentWidth float64, pixelWidth, pixelHeight int) float64 {
	return contentWidth * float64(pixelHeight) / float64(pixelWidth)
}

// NewPlan computes the slices for a pixelWidth x pixelHeight bitmap
func NewPlan(g Geometry, pixelWidth, pixelHeight int) (*Plan, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if pixelWidth <= 0 || pixelHeight <= 0 {
		return nil, errors.New(errors.ErrCodeCapture, "content bitmap is empty (%dx%d)", pixelWidth, pixelHeight)
	}

	cw, ch := g.ContentWidth(), g.ContentHeight()
	l := LogicalHeight(cw, pixelWidth, pixelHeight)
	p := &Plan{
		ContentWidth:  cw,
		ContentHeight: ch,
		LogicalHeight: l,
		PixelWidth:    pixelWidth,
		PixelHeight:   pixelHeight,
	}

	if l <= ch {
		p.Slices = []Slice{{LogicalHeight: l, PixelEnd: pixelHeight}}
		return p, nil
	}

	q := l / ch
	n := int(math.Ceil(q - q*pageCountTolerance))
	row := func(y float64) int {
		if y >= l {
			return pixelHeight
		}
		return int(math.Floor(y/l*float64(pixelHeight) + 0.5))
	}

	for k := 0; k < n; k++ {
		top := float64(k) * ch
		bottom := math.Min(top+ch, l)
		start, end := row(top), row(bottom)
		if k == n-1 {
			bottom, end = l, pixelHeight
		}
		if end <= start {
			continue
		}
		p.Slices = append(p.Slices, Slice{
			Index:         len(p.Slices),
			LogicalTop:    top,
			LogicalHeight: bottom - top,
			PixelStart:    start,
			PixelEnd:      end,
		})
	}
	return p, nil
}

// SinglePage reports whether the whole bitmap fits on one page
func (p *Plan) SinglePage() bool {
	return len(p.Slices) == 1
}

// Paginator writes a bitmap as pages through a DocumentWriter
type Paginator struct {
	Geometry   Geometry
	Background color.Color
	Logger     *log.Logger
}

// NewPaginator creates a paginator for the given geometry on white
func NewPaginator(g Geometry, logger *log.Logger) *Paginator {
	if logger == nil {
		logger = log.Default()
	}
	return &Paginator{Geometry: g, Background: color.White, Logger: logger}
}

// Paginate slices bitmap and adds one image page per slice to w. Each page
// image is placed at (margin, margin) sized to the content width and the
// slice's logical height. The first failure aborts the run.
func (p *Paginator) Paginate(ctx context.Context, bitmap image.Image, w pdf.DocumentWriter) (*Plan, error) {
	if bitmap == nil {
		return nil, errors.New(errors.ErrCodeCapture, "no content bitmap")
	}
	b := bitmap.Bounds()
	plan, err := NewPlan(p.Geometry, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	bg := p.Background
	if bg == nil {
		bg = color.White
	}

	m := p.Geometry.Margin
	for _, s := range plan.Slices {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncoding, err, "pagination canceled at page %d", s.Index+1)
		}

		data, err := encodeSlice(bitmap, s, bg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncoding, err, "failed to encode page %d", s.Index+1)
		}
		if err := w.AddImagePage(data, m, m, plan.ContentWidth, s.LogicalHeight); err != nil {
			if errors.GetCode(err) != "" {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeEncoding, err, "failed to add page %d", s.Index+1)
		}
		logger.Debug("added page", "page", s.Index+1, "rows", s.Rows(), "height", s.LogicalHeight)
	}

	logger.Debug("paginated content", "pages", len(plan.Slices), "logical_height", plan.LogicalHeight)
	return plan, nil
}

// encodeSlice copies the slice rows onto a fresh opaque surface and
// encodes it as PNG
func encodeSlice(bitmap image.Image, s Slice, bg color.Color) ([]byte, error) {
	b := bitmap.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), s.Rows()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), bitmap, image.Pt(b.Min.X, b.Min.Y+s.PixelStart), draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
