package geometry

import "github.com/df07/go-sphere-pathtracer/pkg/core"

// Hitable is anything a ray can intersect
type Hitable interface {
	// Hit returns the nearest intersection with tMin < t < tMax
	Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool)
}
