package style

import (
	"strconv"
	"strings"
)

// DefaultFontSize is the root font size in px.
const DefaultFontSize = 12.0

// ParseLength converts a CSS length to points. Percentages resolve against
// relative, em against relative as well (callers pass the font size for
// font-relative properties), rem against DefaultFontSize. Unparsable values
// return def.
func ParseLength(value string, relative, def float64) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "auto" || value == "normal" {
		return def
	}

	unit := func(suffix string) (float64, bool) {
		if !strings.HasSuffix(value, suffix) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value[:len(value)-len(suffix)]), 64)
		return f, err == nil
	}

	if f, ok := unit("%"); ok {
		return relative * f / 100
	}
	if f, ok := unit("rem"); ok {
		return f * DefaultFontSize
	}
	if f, ok := unit("em"); ok {
		return f * relative
	}
	if f, ok := unit("px"); ok {
		return f
	}
	if f, ok := unit("pt"); ok {
		return f
	}
	if f, ok := unit("in"); ok {
		return f * 72
	}
	if f, ok := unit("mm"); ok {
		return f * 72 / 25.4
	}
	if f, ok := unit("cm"); ok {
		return f * 72 / 2.54
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return def
}

// ParseLineHeight resolves line-height against a font size. Unitless
// numbers are multipliers.
func ParseLineHeight(value string, fontSize float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "normal" {
		return 1.2 * fontSize
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f * fontSize
	}
	return ParseLength(value, fontSize, 1.2*fontSize)
}

// ParseBox parses a margin/padding shorthand into top, right, bottom, left.
func ParseBox(value string, relative float64) (top, right, bottom, left float64) {
	parts := strings.Fields(value)
	v := make([]float64, len(parts))
	for i, p := range parts {
		v[i] = ParseLength(p, relative, 0)
	}
	switch len(v) {
	case 1:
		return v[0], v[0], v[0], v[0]
	case 2:
		return v[0], v[1], v[0], v[1]
	case 3:
		return v[0], v[1], v[2], v[1]
	case 4:
		return v[0], v[1], v[2], v[3]
	}
	return 0, 0, 0, 0
}

func formatPx(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "px"
}
