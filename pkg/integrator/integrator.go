package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// World is the read-only view of a scene that an integrator traces against.
// Implementations must be safe for concurrent use once rendering starts.
type World interface {
	// Hit returns the closest intersection with tMin < t < tMax
	Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool)
	// Material resolves a hit record's material handle
	Material(id core.MaterialID) core.Material
	// BackgroundColors returns the sky gradient's top and bottom colors
	BackgroundColors() (topColor, bottomColor core.Vec3)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray
	RayColor(ray core.Ray, world World, sampler core.Sampler) (core.Vec3, error)
}
