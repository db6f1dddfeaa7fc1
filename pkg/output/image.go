package output

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/nfnt/resize"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// SaveImage writes fb to path, choosing the format from the extension
func SaveImage(path string, fb *renderer.Framebuffer) error {
	data, err := Encode(fb, filepath.Ext(path), nil)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Encode returns fb in the format named by ext. .ppm is written as P3 text; png, jpg, gif,
// tif and bmp go through imaging, with caption lines drawn by Annotate when given.
func Encode(fb *renderer.Framebuffer, ext string, caption []string) ([]byte, error) {
	var buf bytes.Buffer
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	if ext == "ppm" {
		if err := WritePPM(&buf, fb); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("output format %q: %w", ext, err)
	}

	img := Annotate(fb.ToRGBA(), caption)
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ext, err)
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type for an output file name
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		return "image/x-portable-pixmap"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}

// EncodePNG returns img as PNG bytes
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail scales img down so neither side exceeds maxSize, keeping the aspect ratio.
// Images already within bounds are returned unchanged.
func Thumbnail(img image.Image, maxSize int) image.Image {
	if maxSize <= 0 {
		return img
	}
	return resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Bilinear)
}

// Annotate draws lines of text on a translucent strip along the bottom of img
func Annotate(img image.Image, lines []string) image.Image {
	if len(lines) == 0 {
		return img
	}

	dc := gg.NewContextForImage(img)
	lineHeight := dc.FontHeight() * 1.4
	padding := 4.0
	stripHeight := lineHeight*float64(len(lines)) + padding*2
	top := float64(dc.Height()) - stripHeight

	dc.SetColor(color.RGBA{0, 0, 0, 160})
	dc.DrawRectangle(0, top, float64(dc.Width()), stripHeight)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for i, line := range lines {
		dc.DrawString(line, padding, top+padding+lineHeight*float64(i+1)-lineHeight*0.3)
	}
	return dc.Image()
}

// StatsLines formats render statistics for Annotate
func StatsLines(sceneName string, stats renderer.RenderStats) []string {
	return []string{
		fmt.Sprintf("%s  %d spp", sceneName, stats.MaxSamplesUsed),
		fmt.Sprintf("%.2f bounces/sample  %v", stats.AverageBounces(), stats.Elapsed.Round(time.Millisecond)),
	}
}
