package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewDefaultScene creates a default scene with diffuse, metal and glass spheres on a large
// ground sphere, including a hollow glass shell around a blue core
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(0, 0.75, 2), // Position camera higher and farther back
		LookAt:        core.NewVec3(0, 0.5, -1), // Look at the sphere center
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   16.0 / 9.0,
		VFov:          40.0, // Narrower field of view for focus effect
		Aperture:      0.05,
		FocusDistance: 0.0, // Auto-calculate focus distance
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	samplingConfig := renderer.SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 200,
		MaxDepth:        50,
	}

	b := &sceneBuilder{scene: NewScene(cameraConfig, samplingConfig)}

	lambertianGreen := b.material(material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6)))
	lambertianBlue := b.material(material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5)))
	lambertianRed := b.material(material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2)))
	metalSilver := b.material(material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0))
	metalGold := b.material(material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3))
	glass := b.material(material.NewDielectric(1.5))

	// Ground sphere large enough to read as a plane at y = 0
	b.sphere(core.NewVec3(0, -1000, 0), 1000, lambertianGreen)

	b.sphere(core.NewVec3(0, 0.5, -1), 0.5, lambertianRed)
	b.sphere(core.NewVec3(-1, 0.5, -1), 0.5, metalSilver)
	b.sphere(core.NewVec3(1, 0.5, -1), 0.5, metalGold)
	b.sphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass)

	// Hollow glass sphere with a blue sphere inside
	b.sphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, glass)
	b.sphere(core.NewVec3(-0.5, 0.25, -0.5), -0.24, glass)
	b.sphere(core.NewVec3(-0.5, 0.25, -0.5), 0.20, lambertianBlue)

	return b.finish()
}

// NewThreeSpheresScene creates the classic diffuse, metal and glass trio on a yellow ground.
// The glass sphere is hollow: a negative-radius inner sphere flips its normals.
func NewThreeSpheresScene(cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:    core.NewVec3(3, 3, 2),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: 2.0,
		VFov:        20.0,
		Aperture:    0.5,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	b := &sceneBuilder{scene: NewScene(cameraConfig, renderer.DefaultSamplingConfig())}

	blue := b.material(material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5)))
	yellow := b.material(material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	gold := b.material(material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0))
	glass := b.material(material.NewDielectric(1.5))

	b.sphere(core.NewVec3(0, 0, -1), 0.5, blue)
	b.sphere(core.NewVec3(0, -100.5, -1), 100, yellow)
	b.sphere(core.NewVec3(1, 0, -1), 0.5, gold)
	b.sphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	b.sphere(core.NewVec3(-1, 0, -1), -0.45, glass)

	return b.finish()
}
