package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// RGB is a quantized 8-bit color
type RGB struct {
	R, G, B uint8
}

// Framebuffer holds quantized pixels in row-major order, top row first
type Framebuffer struct {
	Width  int
	Height int
	Pix    []RGB
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]RGB, width*height),
	}
}

// Set stores the pixel at column x of row y, where y = 0 is the top row
func (fb *Framebuffer) Set(x, y int, c RGB) {
	fb.Pix[y*fb.Width+x] = c
}

// At returns the pixel at column x of row y, where y = 0 is the top row
func (fb *Framebuffer) At(x, y int) RGB {
	return fb.Pix[y*fb.Width+x]
}

// ToRGBA converts the framebuffer to an opaque image
func (fb *Framebuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			p := fb.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return img
}

// Quantize converts a linear color to 8-bit: gamma 2 (square root), clamp to [0,1],
// then floor(255.99 * x)
func Quantize(linear core.Vec3) RGB {
	c := linear.Sqrt()
	return RGB{
		R: quantizeChannel(c.X),
		G: quantizeChannel(c.Y),
		B: quantizeChannel(c.Z),
	}
}

func quantizeChannel(x float64) uint8 {
	// NaN from a negative input maps to black
	if math.IsNaN(x) {
		return 0
	}
	return uint8(255.99 * mgl64.Clamp(x, 0, 1))
}
