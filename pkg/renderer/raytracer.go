package renderer

import (
	"fmt"
	"image"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum number of scatter events per path
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           200,
		Height:          100,
		SamplesPerPixel: 10,
		MaxDepth:        integrator.DefaultMaxDepth,
	}
}

// MergeSamplingConfig returns base with every positive field of override applied
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	result := base
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.Height > 0 {
		result.Height = override.Height
	}
	if override.SamplesPerPixel > 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth > 0 {
		result.MaxDepth = override.MaxDepth
	}
	return result
}

// Scene interface to avoid circular imports
type Scene interface {
	integrator.World
	GetCamera() *Camera
	GetSamplingConfig() SamplingConfig
}

// Raytracer samples the image plane and averages radiance estimates per pixel
type Raytracer struct {
	scene      Scene
	width      int
	height     int
	config     SamplingConfig
	integrator *integrator.PathTracingIntegrator
	logger     core.Logger
}

// NewRaytracer creates a new raytracer using the scene's sampling configuration
func NewRaytracer(scene Scene, width, height int, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	config := scene.GetSamplingConfig()
	return &Raytracer{
		scene:      scene,
		width:      width,
		height:     height,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(config.MaxDepth),
		logger:     logger,
	}
}

// RenderPass renders the whole image from a single sample stream. Rows are visited from the
// top of the viewport down and progress is logged once per finished scanline.
func (rt *Raytracer) RenderPass(sampler core.Sampler) (*Framebuffer, RenderStats, error) {
	start := time.Now()
	fb := NewFramebuffer(rt.width, rt.height)
	camera := rt.scene.GetCamera()
	samples := max(1, rt.config.SamplesPerPixel)

	stats := RenderStats{
		TotalPixels: rt.width * rt.height,
		MaxSamples:  samples,
		MinSamples:  samples,
	}

	for j := rt.height - 1; j >= 0; j-- {
		for i := 0; i < rt.width; i++ {
			var ps PixelStats
			bounces, err := rt.samplePixel(camera, i, j, &ps, sampler, samples)
			if err != nil {
				return nil, RenderStats{}, err
			}
			stats.TotalBounces += bounces
			stats.TotalSamples += ps.SampleCount

			fb.Set(i, rt.height-1-j, Quantize(ps.GetColor()))
		}
		rt.logger.Printf("Finished scanline %d/%d\n", rt.height-j, rt.height)
	}

	stats.MaxSamplesUsed = samples
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	stats.Elapsed = time.Since(start)

	return fb, stats, nil
}

// RenderBounds adds samples to every pixel inside bounds until each pixel holds targetSamples.
// Bounds are in image coordinates (y = 0 is the top row). Each call must own its region of
// pixelStats exclusively.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) (RenderStats, error) {
	camera := rt.scene.GetCamera()
	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  targetSamples,
		MinSamples:  targetSamples,
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		j := rt.height - 1 - y
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ps := &pixelStats[y][x]
			before := ps.SampleCount

			bounces, err := rt.samplePixel(camera, x, j, ps, sampler, targetSamples)
			if err != nil {
				return stats, err
			}

			used := ps.SampleCount - before
			stats.TotalSamples += used
			stats.TotalBounces += bounces
			stats.MinSamples = min(stats.MinSamples, used)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, used)
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats, nil
}

// samplePixel traces jittered camera rays through pixel (i, j), counting j from the bottom row,
// until ps holds targetSamples samples
func (rt *Raytracer) samplePixel(camera *Camera, i, j int, ps *PixelStats, sampler core.Sampler, targetSamples int) (int, error) {
	bounces := 0
	for ps.SampleCount < targetSamples {
		s := (float64(i) + sampler.Get1D()) / float64(rt.width)
		t := (float64(j) + sampler.Get1D()) / float64(rt.height)

		ray := camera.GetRay(s, t, sampler)
		color, depth, err := rt.integrator.Trace(ray, rt.scene, sampler)
		if err != nil {
			return bounces, fmt.Errorf("pixel (%d, %d): %w", i, rt.height-1-j, err)
		}

		bounces += depth
		ps.AddSample(color)
	}
	return bounces, nil
}
