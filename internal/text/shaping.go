// Package text measures and wraps text with the Go font family so that the
// layout engine and the rasterizer agree on every glyph advance.
package text

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Font describes the face a run of text is set in. Size is in pixels.
type Font struct {
	Bold   bool
	Italic bool
	Mono   bool
	Size   float64
}

func (f Font) variant() variant {
	switch {
	case f.Mono && f.Bold:
		return monoBold
	case f.Mono:
		return mono
	case f.Bold && f.Italic:
		return boldItalic
	case f.Bold:
		return bold
	case f.Italic:
		return italic
	}
	return regular
}

type variant int

const (
	regular variant = iota
	bold
	italic
	boldItalic
	mono
	monoBold
)

var ttfs = map[variant][]byte{
	regular:    goregular.TTF,
	bold:       gobold.TTF,
	italic:     goitalic.TTF,
	boldItalic: gobolditalic.TTF,
	mono:       gomono.TTF,
	monoBold:   gomonobold.TTF,
}

// Parsed fonts are immutable and shared by every Shaper.
var (
	parseOnce sync.Once
	parsed    map[variant]*truetype.Font
	parseErr  error
)

func loadFonts() (map[variant]*truetype.Font, error) {
	parseOnce.Do(func() {
		parsed = make(map[variant]*truetype.Font, len(ttfs))
		for v, data := range ttfs {
			f, err := truetype.Parse(data)
			if err != nil {
				parseErr = fmt.Errorf("failed to parse font variant %d: %w", v, err)
				return
			}
			parsed[v] = f
		}
	})
	return parsed, parseErr
}

type faceKey struct {
	v    variant
	size int64 // size in 1/64 px
}

// Shaper owns a cache of font faces. Faces are not safe for concurrent
// use, so every call takes the shaper's lock.
type Shaper struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewTextShaper creates a new text shaper
func NewTextShaper() *Shaper {
	return &Shaper{faces: make(map[faceKey]font.Face)}
}

// Face returns the cached face for f. The returned face must only be used
// while no other goroutine uses the same Shaper.
func (s *Shaper) Face(f Font) (font.Face, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.face(f)
}

func (s *Shaper) face(f Font) (font.Face, error) {
	if f.Size <= 0 {
		f.Size = 16
	}
	key := faceKey{v: f.variant(), size: int64(math.Round(f.Size * 64))}
	if face, ok := s.faces[key]; ok {
		return face, nil
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(fonts[key.v], &truetype.Options{
		Size:    float64(key.size) / 64,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	s.faces[key] = face
	return face, nil
}

// MeasureText returns the advance width of text in pixels
func (s *Shaper) MeasureText(text string, f Font) float64 {
	if text == "" {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	face, err := s.face(f)
	if err != nil {
		return float64(len([]rune(text))) * f.Size * 0.55
	}
	return float64(font.MeasureString(face, text)) / 64
}

// Metrics returns the ascent and descent of f in pixels
func (s *Shaper) Metrics(f Font) (ascent, descent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	face, err := s.face(f)
	if err != nil {
		return f.Size * 0.8, f.Size * 0.2
	}
	m := face.Metrics()
	return float64(m.Ascent) / 64, float64(m.Descent) / 64
}

// SplitTextToLines greedily breaks text into lines no wider than maxWidth.
// A single word wider than maxWidth gets a line of its own.
func (s *Shaper) SplitTextToLines(text string, f Font, maxWidth float64) []string {
	words := SplitIntoWords(text)
	if maxWidth <= 0 || len(words) == 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	var current string
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && s.MeasureText(candidate, f) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// SplitIntoWords splits text on any run of white space
func SplitIntoWords(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}
