// Package export turns a profile into a paginated PDF resume: render a
// template, capture it off-screen, slice the capture into pages and write
// the document.
package export

import (
	"bytes"
	"context"
	"image"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gompdf/folio/internal/pagination"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/profile"
	"github.com/gompdf/folio/internal/raster"
	"github.com/gompdf/folio/internal/render/pdf"
	"github.com/gompdf/folio/internal/templates"
	"github.com/gompdf/folio/pkg/errors"
	"github.com/google/uuid"
)

// Options configures an Exporter
type Options struct {
	Geometry pagination.Geometry
	Capture  raster.Options
	// Creator is written into the document metadata
	Creator string
}

// DefaultOptions returns A4 pages with a 10 mm margin and a 794px capture
// at 2.5x
func DefaultOptions() Options {
	return Options{
		Geometry: pagination.A4(),
		Capture:  raster.DefaultOptions(),
		Creator:  "folio",
	}
}

// Result describes a finished export
type Result struct {
	ID       string
	FileName string
	Pages    int
	Bytes    int
	Plan     *pagination.Plan
	Duration time.Duration
}

// WriterFactory creates the document writer for one export
type WriterFactory func(size pdf.PageSize, meta pdf.Metadata) pdf.DocumentWriter

// Exporter runs exports one at a time
type Exporter struct {
	templates templates.Registry
	raster    raster.Rasterizer
	opts      Options
	logger    *log.Logger
	newWriter WriterFactory

	busy atomic.Bool
}

// New creates an Exporter
func New(r templates.Registry, rast raster.Rasterizer, opts Options, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{
		templates: r,
		raster:    rast,
		opts:      opts,
		logger:    logger,
		newWriter: func(size pdf.PageSize, meta pdf.Metadata) pdf.DocumentWriter {
			return pdf.NewWriter(size, meta)
		},
	}
}

// SetWriterFactory replaces the document writer, e.g. to target another
// output format
func (e *Exporter) SetWriterFactory(f WriterFactory) {
	if f != nil {
		e.newWriter = f
	}
}

// InProgress reports whether an export is running
func (e *Exporter) InProgress() bool {
	return e.busy.Load()
}

// Options returns the exporter configuration
func (e *Exporter) Options() Options {
	return e.opts
}

// Export renders p with the named template and writes the PDF to w. A
// second call while one is running fails with EXPORT_IN_PROGRESS. Nothing
// is written to w unless the whole document was produced.
func (e *Exporter) Export(ctx context.Context, p *profile.Profile, template string, w io.Writer) (*Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeExportInProgress, "an export is already in progress")
	}
	defer e.busy.Store(false)

	markup, err := e.templates.Render(template, p)
	if err != nil {
		return nil, err
	}
	doc, err := html.NewParser().ParseString(markup)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCapture, err, "failed to parse template %s", template)
	}
	defer doc.Release()

	meta := pdf.Metadata{
		Title:    p.Personal.Name + " - Resume",
		Author:   p.Personal.Name,
		Subject:  p.Personal.Title,
		Keywords: keywords(p),
	}
	return e.export(ctx, doc, p.ResumeFileName(), meta, w)
}

// ExportDocument paginates an already parsed document. It shares the
// in-progress guard with Export.
func (e *Exporter) ExportDocument(ctx context.Context, doc *html.Document, fileName string, meta pdf.Metadata, w io.Writer) (*Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeExportInProgress, "an export is already in progress")
	}
	defer e.busy.Store(false)

	return e.export(ctx, doc, fileName, meta, w)
}

func (e *Exporter) export(ctx context.Context, doc *html.Document, fileName string, meta pdf.Metadata, w io.Writer) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := e.logger.With("export", id)

	if err := e.opts.Geometry.Validate(); err != nil {
		return nil, err
	}

	var bitmap image.Image
	err := withClone(doc, func(clone *html.Document) error {
		var err error
		bitmap, err = e.raster.Capture(ctx, clone, e.opts.Capture)
		return err
	})
	if err != nil {
		logger.Warn("capture failed", "err", err)
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeCapture, err, "failed to capture content")
		}
		return nil, err
	}

	g := e.opts.Geometry
	if meta.Creator == "" {
		meta.Creator = e.opts.Creator
	}
	meta.Created = start
	writer := e.newWriter(pdf.PageSize{Width: g.PageWidth, Height: g.PageHeight, Unit: g.Unit}, meta)

	paginator := pagination.NewPaginator(g, logger)
	if e.opts.Capture.Background != nil {
		paginator.Background = e.opts.Capture.Background
	}
	plan, err := paginator.Paginate(ctx, bitmap, writer)
	if err != nil {
		logger.Warn("pagination failed", "err", err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := writer.Output(&buf); err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeEncoding, err, "failed to write document")
		}
		return nil, err
	}
	n, err := io.Copy(w, &buf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncoding, err, "failed to deliver document")
	}

	res := &Result{
		ID:       id,
		FileName: fileName,
		Pages:    len(plan.Slices),
		Bytes:    int(n),
		Plan:     plan,
		Duration: time.Since(start),
	}
	logger.Info("exported document", "file", res.FileName, "pages", res.Pages, "bytes", res.Bytes, "duration", res.Duration)
	return res, nil
}

// withClone runs fn on a detached copy of the printable content of doc.
// The content root is the element with id templates.RootID, falling back
// to <body>. The copy is released when fn returns.
func withClone(doc *html.Document, fn func(*html.Document) error) error {
	if doc == nil || doc.Root == nil {
		return errors.New(errors.ErrCodeCapture, "no content to capture")
	}
	root := doc.FindByID(templates.RootID)
	if root == nil {
		root = doc.FindTag("body")
	}
	if root == nil {
		return errors.New(errors.ErrCodeCapture, "content root %q not found", templates.RootID)
	}

	clone := doc.Detached(root)
	defer clone.Release()
	return fn(clone)
}

func keywords(p *profile.Profile) string {
	return strings.Join(p.SkillNames(), ", ")
}
