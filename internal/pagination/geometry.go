package pagination

import (
	"strings"

	"github.com/gompdf/folio/pkg/errors"
)

// Geometry describes the physical page and its uniform margin. All values
// share Unit.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Unit       string
}

// A4 returns an A4 page in millimetres with a 10 mm margin
func A4() Geometry {
	return Geometry{PageWidth: 210, PageHeight: 297, Margin: 10, Unit: "mm"}
}

// Letter returns a US Letter page in millimetres with a 10 mm margin
func Letter() Geometry {
	return Geometry{PageWidth: 215.9, PageHeight: 279.4, Margin: 10, Unit: "mm"}
}

// Legal returns a US Legal page in millimetres with a 10 mm margin
func Legal() Geometry {
	return Geometry{PageWidth: 215.9, PageHeight: 355.6, Margin: 10, Unit: "mm"}
}

// Named returns the preset for a page name ("a4", "letter" or "legal")
func Named(name string) (Geometry, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a4", "":
		return A4(), true
	case "letter":
		return Letter(), true
	case "legal":
		return Legal(), true
	}
	return Geometry{}, false
}

// ContentWidth is the printable width inside the margins
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// ContentHeight is the printable height inside the margins
func (g Geometry) ContentHeight() float64 {
	return g.PageHeight - 2*g.Margin
}

// Validate reports an INVALID_GEOMETRY error when no content fits on the page
func (g Geometry) Validate() error {
	switch {
	case g.PageWidth <= 0 || g.PageHeight <= 0:
		return errors.New(errors.ErrCodeInvalidGeometry, "page size %gx%g must be positive", g.PageWidth, g.PageHeight)
	case g.Margin < 0:
		return errors.New(errors.ErrCodeInvalidGeometry, "margin %g must not be negative", g.Margin)
	case 2*g.Margin >= g.PageWidth || 2*g.Margin >= g.PageHeight:
		return errors.New(errors.ErrCodeInvalidGeometry, "margin %g leaves no room on a %gx%g page", g.Margin, g.PageWidth, g.PageHeight)
	}
	return nil
}
