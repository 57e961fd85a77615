// Package favicon draws the site icon set: three concentric discs in the
// site's purple palette, written as favicon.png, favicon.ico and
// apple-touch-icon.png.
package favicon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
)

const (
	Primary = "#8b7ab8"
	Light   = "#b8a9d9"
	Dark    = "#6b5b95"
)

// Output file names.
const (
	PNGName   = "favicon.png"
	ICOName   = "favicon.ico"
	AppleName = "apple-touch-icon.png"
)

// ICOSizes are the sizes embedded in favicon.ico.
var ICOSizes = []int{16, 32, 48}

// Margins are the insets of the outer ring, the inner ring and the centre
// disc, in pixels from the edge.
type Margins struct {
	Outer, Inner, Center int
}

// DefaultMargins scales the rings to size.
func DefaultMargins(size int) Margins {
	return Margins{
		Outer:  size / 8,
		Inner:  size / 4,
		Center: (size - size/3) / 2,
	}
}

// AppleMargins are the fixed insets of the 180px touch icon.
var AppleMargins = Margins{Outer: 10, Inner: 40, Center: 70}

// Draw renders one icon on a transparent background.
func Draw(size int, m Margins) image.Image {
	dc := gg.NewContext(size, size)
	half := float64(size) / 2
	for _, ring := range []struct {
		inset int
		color string
	}{
		{m.Outer, Primary},
		{m.Inner, Light},
		{m.Center, Dark},
	} {
		r := half - float64(ring.inset)
		if r <= 0 {
			continue
		}
		dc.DrawCircle(half, half, r)
		dc.SetHexColor(ring.color)
		dc.Fill()
	}
	return dc.Image()
}

// Write renders the icon set into dir and returns the written paths.
func Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	save := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	small, err := encodePNG(Draw(32, DefaultMargins(32)))
	if err != nil {
		return nil, err
	}
	if err := save(PNGName, small); err != nil {
		return written, err
	}

	images := make([]image.Image, 0, len(ICOSizes))
	for _, size := range ICOSizes {
		images = append(images, Draw(size, DefaultMargins(size)))
	}
	ico, err := EncodeICO(images)
	if err != nil {
		return written, err
	}
	if err := save(ICOName, ico); err != nil {
		return written, err
	}

	apple, err := encodePNG(Draw(180, AppleMargins))
	if err != nil {
		return written, err
	}
	if err := save(AppleName, apple); err != nil {
		return written, err
	}
	return written, nil
}

type iconDir struct {
	Reserved uint16
	Type     uint16
	Count    uint16
}

type iconDirEntry struct {
	Width      uint8
	Height     uint8
	Colors     uint8
	Reserved   uint8
	Planes     uint16
	BitCount   uint16
	BytesInRes uint32
	Offset     uint32
}

// EncodeICO packs images into an ICO container with PNG-compressed entries.
// Images must be at most 256px square.
func EncodeICO(images []image.Image) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("ico: no images")
	}
	blobs := make([][]byte, len(images))
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() > 256 || b.Dy() > 256 {
			return nil, fmt.Errorf("ico: image %d is %dx%d, max 256", i, b.Dx(), b.Dy())
		}
		data, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		blobs[i] = data
	}

	var buf bytes.Buffer
	header := iconDir{Type: 1, Count: uint16(len(images))}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	offset := uint32(6 + 16*len(images))
	for i, img := range images {
		b := img.Bounds()
		entry := iconDirEntry{
			Width:      uint8(b.Dx() % 256), // 0 means 256
			Height:     uint8(b.Dy() % 256),
			Planes:     1,
			BitCount:   32,
			BytesInRes: uint32(len(blobs[i])),
			Offset:     offset,
		}
		if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
			return nil, err
		}
		offset += entry.BytesInRes
	}
	for _, blob := range blobs {
		buf.Write(blob)
	}
	return buf.Bytes(), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
