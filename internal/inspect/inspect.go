// Package inspect reads back produced PDF documents.
package inspect

import (
	"io"
	"os"
	"sync"

	"github.com/gompdf/folio/pkg/errors"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pointsPerMM converts PDF user space units to millimetres
const pointsPerMM = 72 / 25.4

var disableConfig sync.Once

// Page is the media box of one page
type Page struct {
	Number   int
	WidthPt  float64
	HeightPt float64
}

// WidthMM is the page width in millimetres
func (p Page) WidthMM() float64 { return p.WidthPt / pointsPerMM }

// HeightMM is the page height in millimetres
func (p Page) HeightMM() float64 { return p.HeightPt / pointsPerMM }

// Report summarizes a document
type Report struct {
	Version   string
	PageCount int
	Title     string
	Author    string
	Creator   string
	Producer  string
	Pages     []Page
}

// Read parses the document in rs
func Read(rs io.ReadSeeker) (*Report, error) {
	disableConfig.Do(api.DisableConfigDir)

	ctx, err := api.ReadValidateAndOptimize(rs, model.NewDefaultConfiguration())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read PDF")
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read page sizes")
	}

	r := &Report{
		Version:   ctx.VersionString(),
		PageCount: ctx.PageCount,
		Title:     ctx.Title,
		Author:    ctx.Author,
		Creator:   ctx.Creator,
		Producer:  ctx.Producer,
	}
	for i, d := range dims {
		r.Pages = append(r.Pages, Page{Number: i + 1, WidthPt: d.Width, HeightPt: d.Height})
	}
	return r, nil
}

// ReadFile parses the document at path
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "failed to open %s", path)
	}
	defer f.Close()
	return Read(f)
}
