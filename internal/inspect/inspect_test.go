package inspect

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gompdf/folio/internal/render/pdf"
	"github.com/gompdf/folio/pkg/errors"
)

func document(t *testing.T, size pdf.PageSize, pages int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(1, 1, color.Black)
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		t.Fatal(err)
	}

	w := pdf.NewWriter(size, pdf.Metadata{Title: "Sample Resume", Author: "Sam"})
	for i := 0; i < pages; i++ {
		if err := w.AddImagePage(encoded.Bytes(), 10, 10, 50, 50); err != nil {
			t.Fatal(err)
		}
	}
	var out bytes.Buffer
	if err := w.Output(&out); err != nil {
		t.Fatal(err)
	}
	return out.Bytes()
}

func TestRead(t *testing.T) {
	tests := []struct {
		name   string
		size   pdf.PageSize
		pages  int
		wantMM [2]float64
	}{
		{"a4", pdf.PageSize{Width: 210, Height: 297, Unit: "mm"}, 2, [2]float64{210, 297}},
		{"letter", pdf.PageSize{Width: 215.9, Height: 279.4, Unit: "mm"}, 1, [2]float64{215.9, 279.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Read(bytes.NewReader(document(t, tt.size, tt.pages)))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if r.PageCount != tt.pages || len(r.Pages) != tt.pages {
				t.Fatalf("pages = %d (%d sizes), want %d", r.PageCount, len(r.Pages), tt.pages)
			}
			for _, p := range r.Pages {
				if math.Abs(p.WidthMM()-tt.wantMM[0]) > 0.2 || math.Abs(p.HeightMM()-tt.wantMM[1]) > 0.2 {
					t.Errorf("page %d = %.1fx%.1f mm", p.Number, p.WidthMM(), p.HeightMM())
				}
			}
			if !strings.HasPrefix(r.Version, "1.") {
				t.Errorf("version = %q", r.Version)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not a pdf"))); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Read(garbage) error = %v, want INVALID_INPUT", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "none.pdf")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want NOT_FOUND", err)
	}
}
