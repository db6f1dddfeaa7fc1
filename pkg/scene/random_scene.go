package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewRandomScene creates the cover scene: a grid of small random spheres around three large
// ones. Every random choice is drawn from sampler, so a seeded sampler reproduces the scene.
func NewRandomScene(sampler core.Sampler, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   16.0 / 9.0,
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	samplingConfig := renderer.SamplingConfig{
		Width:           1280,
		Height:          720,
		SamplesPerPixel: 10,
		MaxDepth:        50,
	}

	b := &sceneBuilder{scene: NewScene(cameraConfig, samplingConfig)}

	ground := b.material(material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	b.sphere(core.NewVec3(0, -1000, 0), 1000, ground)

	// One glass material serves every small glass sphere
	glass := b.material(material.NewDielectric(1.5))
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for c := -11; c < 11; c++ {
			chooseMat := sampler.Get1D()
			x := float64(a) + 0.9*sampler.Get1D()
			z := float64(c) + 0.9*sampler.Get1D()
			center := core.NewVec3(x, 0.2, z)

			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			switch {
			case chooseMat < 0.8: // diffuse
				albedo := core.NewVec3(
					sampler.Get1D()*sampler.Get1D(),
					sampler.Get1D()*sampler.Get1D(),
					sampler.Get1D()*sampler.Get1D(),
				)
				b.sphere(center, 0.2, b.material(material.NewLambertian(albedo)))
			case chooseMat < 0.95: // metal
				albedo := core.NewVec3(
					0.5*(1+sampler.Get1D()),
					0.5*(1+sampler.Get1D()),
					0.5*(1+sampler.Get1D()),
				)
				fuzz := 0.5 * sampler.Get1D()
				b.sphere(center, 0.2, b.material(material.NewMetal(albedo, fuzz)))
			default: // glass
				b.sphere(center, 0.2, glass)
			}
		}
	}

	bigGlass := b.material(material.NewDielectric(1.5))
	bigDiffuse := b.material(material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	bigMetal := b.material(material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	b.sphere(core.NewVec3(0, 1, 0), 1.0, bigGlass)
	b.sphere(core.NewVec3(-4, 1, 0), 1.0, bigDiffuse)
	b.sphere(core.NewVec3(4, 1, 0), 1.0, bigMetal)

	return b.finish()
}
