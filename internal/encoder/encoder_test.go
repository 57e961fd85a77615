package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

type missingEncoder struct{ JPEGEncoder }

func (missingEncoder) Format() string  { return "webp" }
func (missingEncoder) Available() bool { return false }

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for x := 0; x < 16; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 16), 40, 200, 255})
		}
	}
	return img
}

func TestResolveFallsBackToJPEG(t *testing.T) {
	r := NewRegistryWith(&missingEncoder{}, &JPEGEncoder{}, &PNGEncoder{})

	if r.Get("webp") != nil {
		t.Fatal("unavailable encoder registered")
	}
	enc, err := r.Resolve("webp")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if enc.Format() != "jpeg" || enc.Extension() != "jpg" {
		t.Errorf("got %s/%s", enc.Format(), enc.Extension())
	}
	if enc, _ := r.Resolve("PNG"); enc.Format() != "png" {
		t.Errorf("png: got %s", enc.Format())
	}
	if enc, _ := r.Resolve("jpg"); enc.Format() != "jpeg" {
		t.Errorf("jpg alias: got %s", enc.Format())
	}
	if got := r.Available(); len(got) != 2 || got[0] != "jpeg" {
		t.Errorf("available: got %v", got)
	}
}

func TestResolveNoEncoders(t *testing.T) {
	if _, err := NewRegistryWith().Resolve("webp"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEncodersDecode(t *testing.T) {
	src := testImage()

	data, err := (&JPEGEncoder{}).Encode(src, 90)
	if err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	if img, err := jpeg.Decode(bytes.NewReader(data)); err != nil || img.Bounds().Dx() != 16 {
		t.Errorf("jpeg decode: %v", err)
	}

	data, err = (&PNGEncoder{}).Encode(src, 0)
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if img, err := png.Decode(bytes.NewReader(data)); err != nil || img.Bounds().Dy() != 8 {
		t.Errorf("png decode: %v", err)
	}
}
