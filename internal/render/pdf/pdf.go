// Package pdf assembles page images into a PDF document with fpdf.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/folio/pkg/errors"
)

// DocumentWriter receives one image per page and serializes the document
type DocumentWriter interface {
	// AddImagePage starts a page and places a PNG at (x, y) sized w x h in
	// page units
	AddImagePage(img []byte, x, y, w, h float64) error
	// Output writes the finished document
	Output(w io.Writer) error
}

// PageSize describes the physical page in the given unit ("mm", "pt",
// "cm" or "in")
type PageSize struct {
	Width  float64
	Height float64
	Unit   string
}

// Metadata is written into the document information dictionary
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Created  time.Time
}

// Writer is a DocumentWriter backed by fpdf
type Writer struct {
	pdf   *fpdf.Fpdf
	pages int
}

// NewWriter creates a portrait document with the given page size
func NewWriter(size PageSize, meta Metadata) *Writer {
	unit := strings.ToLower(strings.TrimSpace(size.Unit))
	if unit == "" {
		unit = "mm"
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        unit,
		Size:           fpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetKeywords(meta.Keywords, true)
	creator := meta.Creator
	if creator == "" {
		creator = "folio"
	}
	pdf.SetCreator(creator, true)
	pdf.SetProducer("folio", true)
	if !meta.Created.IsZero() {
		pdf.SetCreationDate(meta.Created)
		pdf.SetModificationDate(meta.Created)
	}
	return &Writer{pdf: pdf}
}

// AddImagePage adds a page showing the PNG in img
func (w *Writer) AddImagePage(img []byte, x, y, width, height float64) error {
	if len(img) == 0 {
		return errors.New(errors.ErrCodeEncoding, "page %d has no image data", w.pages+1)
	}
	name := fmt.Sprintf("page-%d", w.pages+1)
	opts := fpdf.ImageOptions{ImageType: "PNG"}

	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	if w.pdf.Err() {
		return errors.Wrap(errors.ErrCodeEncoding, w.pdf.Error(), "failed to embed image for page %d", w.pages+1)
	}
	w.pdf.AddPage()
	w.pdf.ImageOptions(name, x, y, width, height, false, opts, 0, "")
	if w.pdf.Err() {
		return errors.Wrap(errors.ErrCodeEncoding, w.pdf.Error(), "failed to place image on page %d", w.pages+1)
	}
	w.pages++
	return nil
}

// PageCount returns the number of pages added so far
func (w *Writer) PageCount() int {
	return w.pages
}

// Output writes the document to out
func (w *Writer) Output(out io.Writer) error {
	if w.pages == 0 {
		return errors.New(errors.ErrCodeEncoding, "document has no pages")
	}
	if err := w.pdf.Output(out); err != nil {
		return errors.Wrap(errors.ErrCodeEncoding, err, "failed to write document")
	}
	return nil
}
