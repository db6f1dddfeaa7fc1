package material

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) (*Dielectric, error) {
	if math.IsNaN(refractiveIndex) || math.IsInf(refractiveIndex, 0) || refractiveIndex <= 0 {
		return nil, fmt.Errorf("refractive index %v: %w", refractiveIndex, core.ErrInvalidRefractiveIndex)
	}
	return &Dielectric{RefractiveIndex: refractiveIndex}, nil
}

// Scatter implements core.Material for dielectric scattering. Dielectrics always scatter
// and never absorb.
func (d *Dielectric) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	attenuation := core.NewVec3(1.0, 1.0, 1.0)
	reflected := Reflect(rayIn.Direction, hit.Normal)

	var outwardNormal core.Vec3
	var niOverNt, cosine float64

	dot := rayIn.Direction.Dot(hit.Normal)
	if dot > 0 {
		// Exiting the medium: the cosine is measured on the outside of the surface
		outwardNormal = hit.Normal.Negate()
		niOverNt = d.RefractiveIndex
		cosine = dot / rayIn.Direction.Length()
		cosine = math.Sqrt(1 - d.RefractiveIndex*d.RefractiveIndex*(1-cosine*cosine))
	} else {
		outwardNormal = hit.Normal
		niOverNt = 1.0 / d.RefractiveIndex
		cosine = -dot / rayIn.Direction.Length()
	}

	refracted, canRefract := Refract(rayIn.Direction, outwardNormal, niOverNt)
	if !canRefract {
		// Total internal reflection
		return core.ScatterResult{
			Attenuation: attenuation,
			Scattered:   core.NewRay(hit.Point, reflected),
		}, true
	}

	if sampler.Get1D() < Schlick(cosine, d.RefractiveIndex) {
		return core.ScatterResult{
			Attenuation: attenuation,
			Scattered:   core.NewRay(hit.Point, reflected),
		}, true
	}

	return core.ScatterResult{
		Attenuation: attenuation,
		Scattered:   core.NewRay(hit.Point, refracted),
	}, true
}
