package thumbnail

import (
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	titlePoints    = 42
	categoryPoints = 24
)

// systemFonts are tried in order when no font_path is configured. Only
// single-face TrueType files load, so collections (.ttc) are not listed.
var systemFonts = []string{
	"/usr/share/fonts/truetype/nanum/NanumGothic.ttf",
	"/usr/share/fonts/truetype/nanum/NanumGothicBold.ttf",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttf",
	"/Library/Fonts/NanumGothic.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\malgun.ttf`,
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
}

type faces struct {
	title    font.Face
	category font.Face
	source   string
}

// loadFaces returns title and category faces from the first loadable
// candidate, or the built-in bitmap face.
func loadFaces(fontPath string) faces {
	candidates := systemFonts
	if fontPath != "" {
		candidates = append([]string{fontPath}, systemFonts...)
	}
	for _, path := range candidates {
		title, err := gg.LoadFontFace(path, titlePoints)
		if err != nil {
			continue
		}
		category, err := gg.LoadFontFace(path, categoryPoints)
		if err != nil {
			continue
		}
		return faces{title: title, category: category, source: path}
	}
	return faces{title: basicfont.Face7x13, category: basicfont.Face7x13, source: "builtin"}
}
