// Package utils: normalize avatar images before upload.
package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// NormalizeToJPG decodes input (jpg/png/webp), applies EXIF orientation,
// resizes to maxWidth (if > 0), then encodes to JPEG with given quality.
func NormalizeToJPG(input []byte, maxWidth int, quality int) ([]byte, error) {
	if len(input) == 0 {
		return nil, errors.New("empty image")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	img, err := decodeAny(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	ori := readEXIFOrientation(bytes.NewReader(input))
	img = applyOrientation(img, ori)

	if maxWidth > 0 {
		img = resizeMaxWidth(img, maxWidth)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodeAny(r *bytes.Reader) (image.Image, error) {
	r.Seek(0, io.SeekStart)
	if img, err := jpeg.Decode(r); err == nil {
		return img, nil
	}
	r.Seek(0, io.SeekStart)
	if img, err := png.Decode(r); err == nil {
		return img, nil
	}
	r.Seek(0, io.SeekStart)
	if img, err := webp.Decode(r); err == nil {
		return img, nil
	}
	return nil, errors.New("unsupported image format (jpeg/png/webp)")
}

func readEXIFOrientation(r io.Reader) int {
	// Default orientation = 1 (no transform)
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	ori, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return ori
}

// EXIF orientation values:
// 1 = normal, 2 = flip horizontal, 3 = rotate 180, 4 = flip vertical,
// 5/6/7/8 = transposed/rotated variants
func applyOrientation(src image.Image, ori int) image.Image {
	switch ori {
	case 2:
		return flipHorizontal(src)
	case 3:
		return rotate180(src)
	case 4:
		return flipVertical(src)
	case 5:
		return rotate90CW(flipHorizontal(src))
	case 6:
		return rotate90CW(src)
	case 7:
		return rotate90CCW(flipHorizontal(src))
	case 8:
		return rotate90CCW(src)
	default:
		return src
	}
}

func resizeMaxWidth(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w := b.Dx()
	h := b.Dy()
	if w <= 0 || h <= 0 || w <= maxW {
		return src
	}

	scale := float64(maxW) / float64(w)
	newH := int(math.Round(float64(h) * scale))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func rotate90CW(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(h-1-y, x, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate90CCW(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(y, w-1-x, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate180(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, h-1-y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func flipHorizontal(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func flipVertical(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, h-1-y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
