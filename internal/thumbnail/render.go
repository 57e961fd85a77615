package thumbnail

import (
	"image"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

const (
	defaultTitle   = "블로그 포스트"
	maxTitleRunes  = 60
	gradientHeight = 200
	gradientAlpha  = 150
	textLeft       = 50
	lineHeight     = 50
	maxTitleLines  = 2
	hangulBreak    = 15
	longWordRunes  = 20
	barHeight      = 8
	patternStep    = 100
	patternLength  = 50
	categorySep    = " • "
)

// Renderer draws thumbnails of a fixed size.
type Renderer struct {
	Width  int
	Height int
	faces  faces
}

// NewRenderer returns a renderer using fontPath or the first system font
// that loads.
func NewRenderer(width, height int, fontPath string) *Renderer {
	return &Renderer{Width: width, Height: height, faces: loadFaces(fontPath)}
}

// FontSource names the font file in use, or "builtin".
func (r *Renderer) FontSource() string {
	return r.faces.source
}

// Compose crops src to the renderer size around its centre and draws the
// post overlay on top.
func (r *Renderer) Compose(src image.Image, info PostInfo, s Scheme) image.Image {
	filled := imaging.Fill(src, r.Width, r.Height, imaging.Center, imaging.Lanczos)
	dc := gg.NewContextForImage(filled)
	r.overlay(dc, info, s)
	return dc.Image()
}

// Fallback draws generated art for posts whose downloads all failed.
func (r *Renderer) Fallback(info PostInfo, s Scheme) image.Image {
	w, h := float64(r.Width), float64(r.Height)
	dc := gg.NewContext(r.Width, r.Height)

	for y := 0; y < r.Height; y++ {
		t := float64(y) / h
		dc.SetRGB255(
			blend(s.Primary.R, s.GradientEnd.R, t),
			blend(s.Primary.G, s.GradientEnd.G, t),
			blend(s.Primary.B, s.GradientEnd.B, t),
		)
		dc.DrawRectangle(0, float64(y), w, 1)
		dc.Fill()
	}

	dc.SetColor(s.Secondary)
	dc.DrawRectangle(0, 0, w, barHeight)
	dc.Fill()
	dc.SetColor(s.Accent)
	dc.DrawRectangle(0, h-barHeight, w, barHeight)
	dc.Fill()

	dc.SetLineWidth(1)
	for x := 0; x < r.Width; x += patternStep {
		dc.DrawLine(float64(x), 0, float64(x+patternLength), patternLength)
		dc.Stroke()
	}

	r.overlay(dc, info, s)
	return dc.Image()
}

// overlay draws the bottom gradient, the title and the categories.
func (r *Renderer) overlay(dc *gg.Context, info PostInfo, s Scheme) {
	w, h := float64(r.Width), float64(r.Height)

	for i := 0; i < gradientHeight; i++ {
		alpha := gradientAlpha * i / gradientHeight
		dc.SetRGBA255(int(s.Primary.R), int(s.Primary.G), int(s.Primary.B), alpha)
		dc.DrawRectangle(0, h-gradientHeight+float64(i), w, 1)
		dc.Fill()
	}

	dc.SetFontFace(r.faces.title)
	lines := wrapTitle(truncateTitle(info.Title), float64(r.Width-2*textLeft), func(s string) float64 {
		tw, _ := dc.MeasureString(s)
		return tw
	})
	startY := h - 160 - float64(len(lines)-1)*25
	for i, line := range lines {
		y := startY + float64(i*lineHeight)
		for _, off := range []int{3, 2, 1} {
			dc.SetRGBA255(0, 0, 0, 100-off*20)
			dc.DrawStringAnchored(line, textLeft+float64(off), y+float64(off), 0, 1)
		}
		dc.SetColor(s.Text)
		dc.DrawStringAnchored(line, textLeft, y, 0, 1)
	}

	if label := categoryLabel(info.Categories); label != "" {
		dc.SetFontFace(r.faces.category)
		dc.SetColor(s.Secondary)
		dc.DrawStringAnchored(label, textLeft, h-40, 0, 1)
	}
}

func truncateTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return defaultTitle
	}
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes-3]) + "..."
	}
	return title
}

func categoryLabel(categories []string) string {
	if len(categories) > 2 {
		categories = categories[:2]
	}
	return strings.Join(categories, categorySep)
}

type token struct {
	text  string
	space bool // preceded by whitespace
}

// tokenize splits text at whitespace and breaks Hangul runs every
// hangulBreak runes so long Korean titles can wrap.
func tokenize(text string) []token {
	var (
		out     []token
		cur     []rune
		spaced  bool
		pending bool
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, token{text: string(cur), space: spaced})
			cur = cur[:0]
			spaced = false
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
			pending = true
		default:
			if len(cur) == 0 && pending {
				spaced = true
				pending = false
			}
			cur = append(cur, r)
			if isHangul(r) && len(cur) >= hangulBreak {
				flush()
			}
		}
	}
	flush()
	return out
}

// wrapTitle greedily packs tokens into at most maxTitleLines lines no wider
// than maxWidth. A token wider than a line on its own is cut to
// longWordRunes runes.
func wrapTitle(title string, maxWidth float64, measure func(string) float64) []string {
	var (
		lines []string
		line  string
	)
	for _, tok := range tokenize(title) {
		candidate := tok.text
		if line != "" {
			if tok.space {
				candidate = line + " " + tok.text
			} else {
				candidate = line + tok.text
			}
		}
		if measure(candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = tok.text
			continue
		}
		if runes := []rune(tok.text); len(runes) > longWordRunes {
			lines = append(lines, string(runes[:longWordRunes])+"...")
		} else {
			lines = append(lines, tok.text)
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) > maxTitleLines {
		lines = lines[:maxTitleLines]
	}
	return lines
}

func isHangul(r rune) bool {
	return (r >= 0xAC00 && r <= 0xD7AF) || (r >= 0x3131 && r <= 0x318E)
}

func blend(a, b uint8, t float64) int {
	return int(float64(a)*(1-t) + float64(b)*t)
}
