package material

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func TestSchlick_NormalIncidence(t *testing.T) {
	for _, n := range []float64{1.0, 1.33, 1.5, 2.4} {
		r0 := (1 - n) / (1 + n)
		r0 = r0 * r0
		if got := Schlick(1.0, n); got != r0 {
			t.Errorf("Schlick(1, %v) = %v, expected r0 = %v", n, got, r0)
		}
	}

	if got := Schlick(1.0, 1.5); math.Abs(got-0.04) > 1e-15 {
		t.Errorf("Glass normal incidence reflectance = %v, expected 0.04", got)
	}
	if got := Schlick(0.0, 1.5); got != 1.0 {
		t.Errorf("Grazing incidence reflectance = %v, expected 1", got)
	}

	// Reflectance grows toward grazing angles
	if !(Schlick(1.0, 1.5) < Schlick(0.7, 1.5) && Schlick(0.7, 1.5) < Schlick(0.1, 1.5)) {
		t.Error("Reflectance should increase as the cosine decreases")
	}
}

func TestRefract_Snell(t *testing.T) {
	n := core.NewVec3(0, 1, 0)
	v := core.NewVec3(1, -1, 0) // 45 degrees, unnormalized

	refracted, ok := Refract(v, n, 1.0/1.5)
	if !ok {
		t.Fatal("Air to glass should always refract")
	}

	sinIn := 1 / math.Sqrt(2)
	sinOut := refracted.X / refracted.Length()
	if math.Abs(sinOut-sinIn/1.5) > tolerance {
		t.Errorf("Snell's law violated: sinθt = %f, expected %f", sinOut, sinIn/1.5)
	}
	if refracted.Y >= 0 {
		t.Errorf("Refracted ray should continue below the surface, got %v", refracted)
	}
	if math.Abs(refracted.Length()-1) > tolerance {
		t.Errorf("Refracted direction should be unit length, got %f", refracted.Length())
	}

	// Glass to air beyond the critical angle
	if _, ok := Refract(core.NewVec3(1, -0.1, 0), n, 1.5); ok {
		t.Error("Expected total internal reflection past the critical angle")
	}
}

func TestDielectric_AlwaysScattersWithoutAbsorption(t *testing.T) {
	glass, err := NewDielectric(1.5)
	if err != nil {
		t.Fatalf("NewDielectric failed: %v", err)
	}
	white := core.NewVec3(1, 1, 1)

	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, -1, 0)),   // entering
		core.NewRay(core.NewVec3(0, -1, 0), core.NewVec3(0.3, 1, 0)), // exiting, refracts
		core.NewRay(core.NewVec3(0, -1, 0), core.NewVec3(1, 0.1, 0)), // exiting, total internal reflection
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	for _, ray := range rays {
		for i := 0; i < 100; i++ {
			result, ok := glass.Scatter(ray, floorHit(), sampler)
			if !ok {
				t.Fatalf("Dielectric should always scatter (ray %v)", ray.Direction)
			}
			if !result.Attenuation.Equals(white) {
				t.Errorf("Expected attenuation %v, got %v", white, result.Attenuation)
			}
		}
	}
}

func TestDielectric_NormalIncidenceChoosesBySchlick(t *testing.T) {
	glass, _ := NewDielectric(1.5)
	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	// Reflectance at normal incidence is 0.04
	reflectSampler := &fixedSampler{value: 0.01}
	result, _ := glass.Scatter(rayIn, floorHit(), reflectSampler)
	if !vecNear(result.Scattered.Direction, core.NewVec3(0, 1, 0)) {
		t.Errorf("Draw below reflectance should reflect, got %v", result.Scattered.Direction)
	}

	refractSampler := &fixedSampler{value: 0.5}
	result, _ = glass.Scatter(rayIn, floorHit(), refractSampler)
	if !vecNear(result.Scattered.Direction, core.NewVec3(0, -1, 0)) {
		t.Errorf("Draw above reflectance should refract straight through, got %v", result.Scattered.Direction)
	}

	if reflectSampler.draws != 1 || refractSampler.draws != 1 {
		t.Errorf("Expected exactly one draw per scatter, got %d and %d", reflectSampler.draws, refractSampler.draws)
	}
}

func TestDielectric_TotalInternalReflection(t *testing.T) {
	glass, _ := NewDielectric(1.5)

	// Leaving the glass at a grazing angle: d·n > 0 and beyond the critical angle
	rayIn := core.NewRay(core.NewVec3(-1, -0.1, 0), core.NewVec3(1, 0.1, 0))
	sampler := &fixedSampler{value: 0.99}

	result, ok := glass.Scatter(rayIn, floorHit(), sampler)
	if !ok {
		t.Fatal("Dielectric should always scatter")
	}

	expected := Reflect(rayIn.Direction, floorHit().Normal)
	if !vecNear(result.Scattered.Direction, expected) {
		t.Errorf("Expected reflection %v, got %v", expected, result.Scattered.Direction)
	}
	if sampler.draws != 0 {
		t.Errorf("Total internal reflection should not draw a sample, got %d draws", sampler.draws)
	}
}

func TestDielectric_ExitingRefraction(t *testing.T) {
	glass, _ := NewDielectric(1.5)

	// Leaving the glass close to the normal; refraction bends away from the normal
	rayIn := core.NewRay(core.NewVec3(-0.3, -1, 0), core.NewVec3(0.3, 1, 0))
	sampler := &fixedSampler{value: 0.99}

	result, _ := glass.Scatter(rayIn, floorHit(), sampler)
	dir := result.Scattered.Direction.Normalize()
	if dir.Y <= 0 {
		t.Fatalf("Expected refracted ray to continue upward, got %v", dir)
	}

	sinIn := 0.3 / math.Sqrt(1.09)
	if math.Abs(dir.X-sinIn*1.5) > tolerance {
		t.Errorf("Expected sinθt = %f, got %f", sinIn*1.5, dir.X)
	}
}

func TestNewDielectric_Validation(t *testing.T) {
	for _, ri := range []float64{0, -1.5, math.NaN(), math.Inf(1)} {
		if _, err := NewDielectric(ri); !errors.Is(err, core.ErrInvalidRefractiveIndex) {
			t.Errorf("NewDielectric(%v): expected ErrInvalidRefractiveIndex, got %v", ri, err)
		}
	}
	if _, err := NewDielectric(1.0); err != nil {
		t.Errorf("Index 1.0 should be valid, got %v", err)
	}
}
