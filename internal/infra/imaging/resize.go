// Package imaging bounds codec cost by downscaling oversized uploads.
package imaging

import (
	"fmt"
	"image"
	"math"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

type Service struct{}

// Downscale writes a resized PNG copy of inputPath to outputPath when the
// image's pixel count exceeds maxPixels, preserving aspect ratio. Returns
// false without writing anything when the image is already small enough.
// The resample is lossy and irreversible.
func (Service) Downscale(inputPath, outputPath string, maxPixels int64) (bool, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return false, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return false, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if int64(width)*int64(height) <= maxPixels {
		return false, nil
	}

	scale := math.Sqrt(float64(maxPixels) / (float64(width) * float64(height)))
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	out, err := os.Create(outputPath)
	if err != nil {
		return false, fmt.Errorf("create resized image: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, dst); err != nil {
		return false, fmt.Errorf("encode resized image: %w", err)
	}
	return true, nil
}
