package api

import (
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/raster"
)

// Options represents configuration options for the exporter
type Options struct {
	// Page dimensions and the uniform margin, all in Unit
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Unit       string

	// CaptureWidth is the logical layout width in CSS pixels
	CaptureWidth float64
	// Scale is the supersampling factor of the capture
	Scale float64
	// Background fills the capture and page images
	Background color.Color

	// Resource paths searched for images and stylesheets
	ResourcePaths []string
	// BaseURL resolves relative references of converted HTML
	BaseURL string

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string

	Logger *log.Logger
}

// Option is a function that modifies Options
type Option func(*Options)

// Standard page sizes in millimetres
const (
	PageSizeA4Width      = 210.0
	PageSizeA4Height     = 297.0
	PageSizeLetterWidth  = 215.9
	PageSizeLetterHeight = 279.4
	PageSizeLegalWidth   = 215.9
	PageSizeLegalHeight  = 355.6
)

// DefaultOptions returns A4 pages with a 10 mm margin and a 794px capture
// at 2.5x on white
func DefaultOptions() Options {
	g := pagination.A4()
	return Options{
		PageWidth:    g.PageWidth,
		PageHeight:   g.PageHeight,
		Margin:       g.Margin,
		Unit:         g.Unit,
		CaptureWidth: raster.DefaultWidth,
		Scale:        raster.DefaultScale,
		Background:   color.White,
	}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargin sets the margin on all four sides
func WithMargin(margin float64) Option {
	return func(o *Options) {
		o.Margin = margin
	}
}

// WithUnit sets the unit of the page size and margin
func WithUnit(unit string) Option {
	return func(o *Options) {
		o.Unit = unit
	}
}

// WithScale sets the capture supersampling factor
func WithScale(scale float64) Option {
	return func(o *Options) {
		o.Scale = scale
	}
}

// WithCaptureWidth sets the logical capture width in CSS pixels
func WithCaptureWidth(width float64) Option {
	return func(o *Options) {
		o.CaptureWidth = width
	}
}

// WithBackground sets the page background color
func WithBackground(c color.Color) Option {
	return func(o *Options) {
		o.Background = c
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithBaseURL sets the base URL for relative references
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}

// geometry returns the pagination geometry of o
func (o Options) geometry() pagination.Geometry {
	unit := o.Unit
	if unit == "" {
		unit = "mm"
	}
	return pagination.Geometry{PageWidth: o.PageWidth, PageHeight: o.PageHeight, Margin: o.Margin, Unit: unit}
}

// capture returns the rasterizer options of o
func (o Options) capture() raster.Options {
	return raster.Options{Width: o.CaptureWidth, Scale: o.Scale, Background: o.Background}
}
