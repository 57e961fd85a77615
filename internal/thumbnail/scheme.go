package thumbnail

import (
	"image/color"
	"strings"
)

// Scheme is the palette used for overlays and fallback art.
type Scheme struct {
	Name        string
	Primary     color.RGBA
	Secondary   color.RGBA
	Accent      color.RGBA
	Text        color.RGBA
	GradientEnd color.RGBA
}

// Built-in schemes.
var schemes = map[string]Scheme{
	"aws":      newScheme("aws", 0x232F3E, 0xFF9900, 0x4A90E2, 0x1A252F),
	"python":   newScheme("python", 0x1E3A8A, 0xFFD43B, 0x306998, 0x3B82F6),
	"django":   newScheme("django", 0x0C4B33, 0x44B78B, 0x092A1C, 0x44B78B),
	"ai":       newScheme("ai", 0x0C0A09, 0xA855F7, 0x06B6D4, 0x1F1B24),
	"firebase": newScheme("firebase", 0x1A1A1A, 0xFFCB2B, 0xFF6B35, 0x2D2D2D),
	"opencv":   newScheme("opencv", 0x0F172A, 0x22C55E, 0x3B82F6, 0x1E293B),
	"default":  newScheme("default", 0x1F2937, 0x3B82F6, 0x10B981, 0x374151),
}

// GetScheme returns a scheme by name. Falls back to default if unknown.
func GetScheme(name string) Scheme {
	if s, ok := schemes[name]; ok {
		return s
	}
	return schemes["default"]
}

// SelectScheme picks a palette from the first category or tag that names a
// known technology. Matching is by substring, so "aws-lambda" is aws.
func SelectScheme(info PostInfo) Scheme {
	terms := make([]string, 0, len(info.Categories)+len(info.Tags))
	for _, t := range info.Categories {
		terms = append(terms, strings.ToLower(t))
	}
	for _, t := range info.Tags {
		terms = append(terms, strings.ToLower(t))
	}

	for _, term := range terms {
		switch {
		case strings.Contains(term, "aws"):
			return schemes["aws"]
		case containsAny(term, "python", "django", "flask", "fastapi"):
			if strings.Contains(term, "django") {
				return schemes["django"]
			}
			return schemes["python"]
		case containsAny(term, "ai", "yolo", "opencv", "tensorflow", "pytorch"):
			return schemes["ai"]
		case strings.Contains(term, "firebase"):
			return schemes["firebase"]
		}
	}
	return schemes["default"]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func newScheme(name string, primary, secondary, accent, gradientEnd uint32) Scheme {
	return Scheme{
		Name:        name,
		Primary:     hexColor(primary),
		Secondary:   hexColor(secondary),
		Accent:      hexColor(accent),
		Text:        color.RGBA{255, 255, 255, 255},
		GradientEnd: hexColor(gradientEnd),
	}
}

func hexColor(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
