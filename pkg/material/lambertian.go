package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Fraction of light reflected per channel
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) (*Lambertian, error) {
	if err := validateAlbedo(albedo); err != nil {
		return nil, err
	}
	return &Lambertian{Albedo: albedo}, nil
}

// Scatter implements core.Material. Lambertian surfaces always scatter.
func (l *Lambertian) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	// Point in the unit sphere centered at the tip of the normal
	direction := hit.Normal.Add(core.RandomInUnitSphere(sampler))

	// Sample cancelled the normal; fall back to it rather than emitting a zero-length ray
	if direction.NearZero() {
		direction = hit.Normal
	}

	return core.ScatterResult{
		Attenuation: l.Albedo,
		Scattered:   core.NewRay(hit.Point, direction),
	}, true
}
