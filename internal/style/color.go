package style

import (
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"yellow":  {255, 255, 0, 255},
	"maroon":  {128, 0, 0, 255},
	"crimson": {220, 20, 60, 255},
}

// ParseColor parses a CSS color value: named colors, #rgb, #rgba, #rrggbb,
// #rrggbbaa, rgb() and rgba(). It reports false for transparent and for
// values it does not understand.
func ParseColor(value string) (color.Color, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "transparent" || v == "none" {
		return nil, false
	}
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if strings.HasPrefix(v, "#") {
		return parseHex(v[1:])
	}
	if strings.HasPrefix(v, "rgb") {
		return parseRGBFunc(v)
	}
	return nil, false
}

func parseHex(h string) (color.Color, bool) {
	expand := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return b.String()
	}
	switch len(h) {
	case 3, 4:
		h = expand(h)
	case 6, 8:
	default:
		return nil, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, false
	}
	if len(h) == 6 {
		return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, true
	}
	a := uint8(n)
	if a == 0 {
		return nil, false
	}
	return color.NRGBA{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), a}, true
}

func parseRGBFunc(v string) (color.Color, bool) {
	open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return nil, false
	}
	parts := strings.FieldsFunc(v[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) < 3 {
		return nil, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		p := parts[i]
		var f float64
		var err error
		if strings.HasSuffix(p, "%") {
			f, err = strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			f = f * 255 / 100
		} else {
			f, err = strconv.ParseFloat(p, 64)
		}
		if err != nil {
			return nil, false
		}
		ch[i] = clampByte(f)
	}
	alpha := 255.0
	if len(parts) > 3 {
		p := parts[3]
		f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
		if err != nil {
			return nil, false
		}
		if strings.HasSuffix(p, "%") {
			f /= 100
		}
		alpha = f * 255
	}
	if alpha <= 0 {
		return nil, false
	}
	return color.NRGBA{ch[0], ch[1], ch[2], clampByte(alpha)}, true
}

func clampByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f + 0.5)
}
