package emu

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestScaleFrame(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	red := color.RGBA{R: 0xFF, A: 0xFF}
	src.SetRGBA(1, 1, red)

	if got := ScaleFrame(src, 1); got != src {
		t.Error("ScaleFrame(img, 1) should return img")
	}

	dst := ScaleFrame(src, 3)
	if got := dst.Bounds().Size(); got != (image.Point{12, 6}) {
		t.Fatalf("size = %v, want (12,6)", got)
	}
	for y := range 6 {
		for x := range 12 {
			want := color.RGBA{}
			if x/3 == 1 && y/3 == 1 {
				want = red
			}
			if got := dst.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSaveAsPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.SetRGBA(3, 4, color.RGBA{G: 0x80, A: 0xFF})
	path := filepath.Join(t.TempDir(), "img.png")
	if err := SaveAsPNG(img, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, a := dec.At(3, 4).RGBA(); r != 0 || g>>8 != 0x80 || b != 0 || a>>8 != 0xFF {
		t.Errorf("pixel = %v", dec.At(3, 4))
	}

	if err := SaveAsPNG(img, filepath.Join(t.TempDir(), "missing", "img.png")); err == nil {
		t.Error("SaveAsPNG succeeded in a missing directory")
	}
}
