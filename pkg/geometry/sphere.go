package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Sphere represents a sphere shape.
// A negative radius keeps the same surface but flips the normal inward (hollow shell).
type Sphere struct {
	Center     core.Vec3
	Radius     float64
	MaterialID core.MaterialID
}

// NewSphere creates a new sphere, rejecting zero and non-finite radii
func NewSphere(center core.Vec3, radius float64, materialID core.MaterialID) (*Sphere, error) {
	if radius == 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("sphere at %v with radius %v: %w", center, radius, core.ErrInvalidRadius)
	}
	if !center.IsFinite() {
		return nil, fmt.Errorf("sphere center %v: %w", center, core.ErrDegenerateVector)
	}
	return &Sphere{
		Center:     center,
		Radius:     radius,
		MaterialID: materialID,
	}, nil
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic coefficients with the factor 2 folded into b: at² + 2bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - a*c
	if discriminant <= 0 {
		return core.HitRecord{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Nearer root first, then the farther one
	root := (-b - sqrtD) / a
	if root <= tMin || root >= tMax {
		root = (-b + sqrtD) / a
		if root <= tMin || root >= tMax {
			return core.HitRecord{}, false
		}
	}

	point := ray.At(root)
	return core.HitRecord{
		T:          root,
		Point:      point,
		Normal:     point.Subtract(s.Center).Divide(s.Radius),
		MaterialID: s.MaterialID,
	}, true
}
