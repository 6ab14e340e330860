package layout

import (
	"strconv"
	"strings"
)

const rootFontSize = 16.0

// parseLength parses a CSS length value into CSS pixels. Percentages are
// taken of containerSize, em of fontSize. Unknown values and "auto" return
// defaultValue.
func parseLength(value string, containerSize, fontSize, defaultValue float64) float64 {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" || v == "auto" || v == "none" || v == "normal" {
		return defaultValue
	}

	units := []struct {
		suffix string
		factor float64
	}{
		{"rem", rootFontSize},
		{"em", fontSize},
		{"px", 1},
		{"pt", 96.0 / 72.0},
		{"mm", 96.0 / 25.4},
		{"cm", 96.0 / 2.54},
		{"in", 96},
		{"%", containerSize / 100},
	}
	for _, u := range units {
		if strings.HasSuffix(v, u.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSpace(v[:len(v)-len(u.suffix)]), 64)
			if err != nil {
				return defaultValue
			}
			return n * u.factor
		}
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

// isAuto reports whether a length is unset or auto
func isAuto(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, "auto")
}

// resolveFontSize resolves a font-size declaration against the parent size
func resolveFontSize(value string, parent float64) float64 {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "":
		return parent
	case "small":
		return 13
	case "medium":
		return 16
	case "large":
		return 18
	case "smaller":
		return parent / 1.2
	case "larger":
		return parent * 1.2
	}
	// percentages of font-size are relative to the parent font size
	if fs := parseLength(value, parent, parent, parent); fs > 0 {
		return fs
	}
	return parent
}

// resolveLineHeight resolves line-height; unitless numbers multiply the font size
func resolveLineHeight(value string, fontSize float64) float64 {
	v := strings.TrimSpace(value)
	if v == "" || v == "normal" {
		return fontSize * 1.2
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n * fontSize
	}
	return parseLength(v, fontSize, fontSize, fontSize*1.2)
}
