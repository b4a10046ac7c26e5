package emu

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/cespare/xxhash"
	"golang.org/x/image/draw"
)

// ScaleFrame returns img scaled by an integer factor, with nearest-neighbor
// interpolation to keep pixels sharp. img is returned as is if factor <= 1.
func ScaleFrame(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SaveAsPNG encodes img as PNG into a new file at path.
func SaveAsPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("error encoding %s: %v", path, err)
	}
	return f.Close()
}

// FrameHash returns a 64-bit hash of the pixels of img.
func FrameHash(img *image.RGBA) uint64 {
	return xxhash.Sum64(img.Pix)
}
