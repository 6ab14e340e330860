package pagination

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"testing"

	"github.com/gompdf/folio/pkg/errors"
)

const eps = 1e-6

type page struct {
	x, y, w, h float64
	img        image.Image
}

// recorder is a DocumentWriter that keeps every page it receives
type recorder struct {
	pages []page
	fail  error
}

func (r *recorder) AddImagePage(data []byte, x, y, w, h float64) error {
	if r.fail != nil {
		return r.fail
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	r.pages = append(r.pages, page{x, y, w, h, img})
	return nil
}

func (r *recorder) Output(w io.Writer) error { return nil }

func bitmap(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		c := color.RGBA{uint8(y), uint8(y >> 8), 0, 255}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestGeometry(t *testing.T) {
	g := A4()
	if g.ContentWidth() != 190 || g.ContentHeight() != 277 {
		t.Errorf("A4 content = %vx%v, want 190x277", g.ContentWidth(), g.ContentHeight())
	}

	tests := []struct {
		name string
		g    Geometry
		ok   bool
	}{
		{"a4", A4(), true},
		{"letter", Letter(), true},
		{"legal", Legal(), true},
		{"zero margin", Geometry{PageWidth: 100, PageHeight: 100}, true},
		{"zero width", Geometry{PageHeight: 100}, false},
		{"negative margin", Geometry{PageWidth: 100, PageHeight: 100, Margin: -1}, false},
		{"margin eats width", Geometry{PageWidth: 20, PageHeight: 100, Margin: 10}, false},
		{"margin eats height", Geometry{PageWidth: 100, PageHeight: 30, Margin: 15}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidGeometry) {
				t.Errorf("error code = %q", errors.GetCode(err))
			}
		})
	}

	if _, ok := Named("Letter"); !ok {
		t.Error("Named(Letter) not found")
	}
	if _, ok := Named("tabloid"); ok {
		t.Error("Named(tabloid) should fail")
	}
}

func TestSinglePageScenario(t *testing.T) {
	plan, err := NewPlan(A4(), 794, 600)
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}
	if !plan.SinglePage() {
		t.Fatalf("pages = %d, want 1", len(plan.Slices))
	}
	want := 190.0 * 600 / 794
	s := plan.Slices[0]
	if math.Abs(s.LogicalHeight-want) > eps || math.Abs(plan.LogicalHeight-want) > eps {
		t.Errorf("logical height = %v, want %v", s.LogicalHeight, want)
	}
	if s.PixelStart != 0 || s.PixelEnd != 600 {
		t.Errorf("rows = [%d,%d), want [0,600)", s.PixelStart, s.PixelEnd)
	}
}

func TestTwoPageScenario(t *testing.T) {
	plan, err := NewPlan(A4(), 794, 1200)
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}
	if len(plan.Slices) != 2 {
		t.Fatalf("pages = %d, want 2", len(plan.Slices))
	}
	if math.Abs(plan.LogicalHeight-287.153652) > 1e-5 {
		t.Errorf("logical height = %v", plan.LogicalHeight)
	}
	if got := plan.Slices[0].LogicalHeight; got != 277 {
		t.Errorf("page 1 height = %v, want 277", got)
	}
	if got := plan.Slices[1].LogicalHeight; math.Abs(got-10.153652) > 1e-5 {
		t.Errorf("page 2 height = %v, want ~10.15", got)
	}
	if plan.Slices[0].PixelEnd != 1158 || plan.Slices[1].PixelStart != 1158 || plan.Slices[1].PixelEnd != 1200 {
		t.Errorf("boundaries = %+v", plan.Slices)
	}
}

func TestTwoAndAHalfPages(t *testing.T) {
	g := A4()
	// W chosen so that L = 2.5 * CH exactly: H = 2.5*277/190*W
	w, h := 380, 1385
	plan, err := NewPlan(g, w, h)
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}
	if len(plan.Slices) != 3 {
		t.Fatalf("pages = %d, want 3", len(plan.Slices))
	}
	for i, want := range []float64{277, 277, 138.5} {
		if got := plan.Slices[i].LogicalHeight; math.Abs(got-want) > eps {
			t.Errorf("page %d height = %v, want %v", i+1, got, want)
		}
	}
}

func TestCoverage(t *testing.T) {
	g := A4()
	for _, w := range []int{100, 794, 1985} {
		for h := 1; h < 4000; h += 37 {
			plan, err := NewPlan(g, w, h)
			if err != nil {
				t.Fatalf("NewPlan(%d,%d) error = %v", w, h, err)
			}
			next := 0
			for _, s := range plan.Slices {
				if s.PixelStart != next || s.Rows() <= 0 {
					t.Fatalf("%dx%d: slice %d covers [%d,%d), expected start %d", w, h, s.Index, s.PixelStart, s.PixelEnd, next)
				}
				next = s.PixelEnd
			}
			if next != h {
				t.Fatalf("%dx%d: coverage ends at %d", w, h, next)
			}
			want := int(math.Ceil(plan.LogicalHeight/g.ContentHeight() - 1e-9))
			if n := len(plan.Slices); n != want && n != want-1 {
				t.Fatalf("%dx%d: %d pages, want %d", w, h, n, want)
			}
		}
	}
}

func TestScaleInvariance(t *testing.T) {
	g := A4()
	for _, size := range [][2]int{{794, 600}, {794, 1200}, {794, 3000}, {400, 2333}} {
		a, err := NewPlan(g, size[0], size[1])
		if err != nil {
			t.Fatal(err)
		}
		b, err := NewPlan(g, 2*size[0], 2*size[1])
		if err != nil {
			t.Fatal(err)
		}
		if len(a.Slices) != len(b.Slices) {
			t.Fatalf("%v: pages %d vs %d", size, len(a.Slices), len(b.Slices))
		}
		for i := range a.Slices {
			if math.Abs(a.Slices[i].LogicalHeight-b.Slices[i].LogicalHeight) > eps {
				t.Errorf("%v page %d: height %v vs %v", size, i+1, a.Slices[i].LogicalHeight, b.Slices[i].LogicalHeight)
			}
			if d := b.Slices[i].PixelEnd - 2*a.Slices[i].PixelEnd; d < -2 || d > 2 {
				t.Errorf("%v page %d: boundary %d vs %d", size, i+1, b.Slices[i].PixelEnd, a.Slices[i].PixelEnd)
			}
		}
	}
}

func TestTrailingSliverDropped(t *testing.T) {
	// L exceeds 2*CH by less than half a row
	g := Geometry{PageWidth: 120, PageHeight: 120.03, Margin: 10}
	plan, err := NewPlan(g, 1000, 2001)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Slices) != 2 {
		t.Fatalf("pages = %d, want 2", len(plan.Slices))
	}
	if plan.Slices[1].PixelEnd != 2001 {
		t.Errorf("last slice ends at %d", plan.Slices[1].PixelEnd)
	}
}

func TestPaginate(t *testing.T) {
	src := bitmap(794, 1200)
	rec := &recorder{}
	plan, err := NewPaginator(A4(), nil).Paginate(context.Background(), src, rec)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(rec.pages) != 2 {
		t.Fatalf("pages written = %d, want 2", len(rec.pages))
	}
	for i, p := range rec.pages {
		s := plan.Slices[i]
		if p.x != 10 || p.y != 10 || p.w != 190 || math.Abs(p.h-s.LogicalHeight) > eps {
			t.Errorf("page %d placed at (%v,%v) %vx%v", i+1, p.x, p.y, p.w, p.h)
		}
		if b := p.img.Bounds(); b.Dx() != 794 || b.Dy() != s.Rows() {
			t.Errorf("page %d image = %v, want 794x%d", i+1, b, s.Rows())
		}
		// the first row of each page is the first row of its slice
		want := src.RGBAAt(0, s.PixelStart)
		if got := color.RGBAModel.Convert(p.img.At(0, 0)).(color.RGBA); got != want {
			t.Errorf("page %d first row = %v, want %v", i+1, got, want)
		}
	}
}

func TestPaginateTransparentBitmap(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	rec := &recorder{}
	if _, err := NewPaginator(A4(), nil).Paginate(context.Background(), src, rec); err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := rec.pages[0].img.At(5, 5).RGBA(); a != 0xffff {
		t.Errorf("page pixel alpha = %d, want opaque", a)
	}
}

func TestPaginateFailures(t *testing.T) {
	tests := []struct {
		name   string
		bitmap image.Image
		geom   Geometry
		writer *recorder
		code   errors.Code
	}{
		{"nil bitmap", nil, A4(), &recorder{}, errors.ErrCodeCapture},
		{"empty bitmap", image.NewRGBA(image.Rect(0, 0, 0, 10)), A4(), &recorder{}, errors.ErrCodeCapture},
		{"bad geometry", bitmap(10, 10), Geometry{PageWidth: 10, PageHeight: 10, Margin: 5}, &recorder{}, errors.ErrCodeInvalidGeometry},
		{"writer failure", bitmap(10, 10), A4(), &recorder{fail: stderrors.New("disk full")}, errors.ErrCodeEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewPaginator(tt.geom, nil).Paginate(context.Background(), tt.bitmap, tt.writer)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if plan != nil || len(tt.writer.pages) != 0 {
				t.Error("no pages expected on failure")
			}
		})
	}
}
