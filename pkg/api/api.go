// Package api is the programmatic entry point: export a profile as a
// resume PDF or convert arbitrary HTML into image-paginated PDF pages.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gompdf/folio/internal/export"
	"github.com/gompdf/folio/internal/parser/html"
	"github.com/gompdf/folio/internal/profile"
	"github.com/gompdf/folio/internal/raster"
	"github.com/gompdf/folio/internal/render/pdf"
	"github.com/gompdf/folio/internal/res"
	"github.com/gompdf/folio/internal/templates"
	"github.com/gompdf/folio/pkg/errors"
)

type (
	// Profile is the portfolio record rendered into resumes
	Profile = profile.Profile
	// Result describes a finished export
	Result = export.Result
	// Template describes one resume layout
	Template = templates.Template
	// Exporter is the resume-facing name of Converter
	Exporter = Converter
)

// DefaultProfile returns the built-in sample profile
func DefaultProfile() *Profile { return profile.Default() }

// LoadProfile reads a TOML profile
func LoadProfile(path string) (*Profile, error) { return profile.Load(path) }

// ParseProfile decodes a TOML profile
func ParseProfile(data []byte) (*Profile, error) { return profile.Parse(data) }

// Converter is the main API for producing PDFs
type Converter struct {
	options   Options
	templates *templates.Set
	exporter  *export.Exporter
}

// New creates a converter with default options modified by opts
func New(opts ...Option) *Converter {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a converter with the specified options
func NewWithOptions(options Options) *Converter {
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}

	loader := res.NewLoader(options.BaseURL)
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}

	set := templates.MustNew()
	exp := export.New(set, raster.NewCanvas(loader, logger), export.Options{
		Geometry: options.geometry(),
		Capture:  options.capture(),
		Creator:  "folio",
	}, logger)

	return &Converter{
		options:   options,
		templates: set,
		exporter:  exp,
	}
}

// Templates lists the resume layouts
func (c *Converter) Templates() []Template {
	return c.templates.List()
}

// InProgress reports whether an export is running
func (c *Converter) InProgress() bool {
	return c.exporter.InProgress()
}

// Export renders p with the named template and writes the PDF to w
func (c *Converter) Export(ctx context.Context, p *Profile, template string, w io.Writer) (*Result, error) {
	return c.exporter.Export(ctx, p, template, w)
}

// ExportBytes is Export into memory
func (c *Converter) ExportBytes(ctx context.Context, p *Profile, template string) ([]byte, *Result, error) {
	var buf bytes.Buffer
	result, err := c.Export(ctx, p, template, &buf)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), result, nil
}

// ExportFile writes the resume into dir under the profile's resume file
// name and returns the path
func (c *Converter) ExportFile(ctx context.Context, p *Profile, template, dir string) (string, *Result, error) {
	data, result, err := c.ExportBytes(ctx, p, template)
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, result.FileName)
	if err := writeFile(path, data); err != nil {
		return "", nil, err
	}
	return path, result, nil
}

// Convert captures an HTML document and writes it as PDF pages to w
func (c *Converter) Convert(ctx context.Context, htmlContent string, w io.Writer) (*Result, error) {
	doc, err := html.NewParser().Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to parse HTML")
	}
	defer doc.Release()

	meta := pdf.Metadata{
		Title:    c.options.Title,
		Author:   c.options.Author,
		Subject:  c.options.Subject,
		Keywords: c.options.Keywords,
	}
	return c.exporter.ExportDocument(ctx, doc, "document.pdf", meta, w)
}

// ConvertToFile converts HTML and writes the result to outputPath
func (c *Converter) ConvertToFile(ctx context.Context, htmlContent, outputPath string) (*Result, error) {
	var buf bytes.Buffer
	result, err := c.Convert(ctx, htmlContent, &buf)
	if err != nil {
		return nil, err
	}
	result.FileName = filepath.Base(outputPath)
	if err := writeFile(outputPath, buf.Bytes()); err != nil {
		return nil, err
	}
	return result, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
