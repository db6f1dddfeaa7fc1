package material

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func TestLambertian_AlwaysScatters(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.7, 0.9)
	lambertian, err := NewLambertian(albedo)
	if err != nil {
		t.Fatalf("NewLambertian failed: %v", err)
	}
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	hit := floorHit()

	incoming := []core.Vec3{
		core.NewVec3(0, -1, 0),
		core.NewVec3(1, -0.01, 0),
		core.NewVec3(0, 1, 0), // from below the surface
	}

	for _, dir := range incoming {
		rayIn := core.NewRay(core.NewVec3(0, 1, 0), dir)
		for i := 0; i < 200; i++ {
			scatter, didScatter := lambertian.Scatter(rayIn, hit, sampler)
			if !didScatter {
				t.Fatalf("Lambertian should always scatter (dir %v, iteration %d)", dir, i)
			}
			if !scatter.Attenuation.Equals(albedo) {
				t.Errorf("Expected attenuation %v, got %v", albedo, scatter.Attenuation)
			}
			if !scatter.Scattered.Origin.Equals(hit.Point) {
				t.Errorf("Scattered ray should start at the hit point, got %v", scatter.Scattered.Origin)
			}
			// Target lies inside the unit sphere centered at the tip of the normal
			offset := scatter.Scattered.Direction.Subtract(hit.Normal)
			if offset.LengthSquared() >= 1.0 {
				t.Errorf("Direction %v outside the unit sphere around the normal", scatter.Scattered.Direction)
			}
			if scatter.Scattered.Direction.LengthSquared() == 0 {
				t.Error("Scattered direction should not be zero")
			}
		}
	}
}

func TestLambertian_CancelledSampleFallsBackToNormal(t *testing.T) {
	lambertian, _ := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	// Maps to (0, -0.99999999995, 0), almost exactly -normal
	sampler := &sequenceSampler{values: []float64{0.5, 2.5e-11, 0.5}}

	scatter, ok := lambertian.Scatter(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), floorHit(), sampler)
	if !ok {
		t.Fatal("Lambertian should always scatter")
	}
	if !scatter.Scattered.Direction.Equals(floorHit().Normal) {
		t.Errorf("Expected fallback to the normal, got %v", scatter.Scattered.Direction)
	}
}

func TestNewLambertian_Validation(t *testing.T) {
	tests := []struct {
		name   string
		albedo core.Vec3
		valid  bool
	}{
		{"grey", core.NewVec3(0.5, 0.5, 0.5), true},
		{"black", core.NewVec3(0, 0, 0), true},
		{"white", core.NewVec3(1, 1, 1), true},
		{"above one", core.NewVec3(1.2, 0.5, 0.5), false},
		{"negative", core.NewVec3(0.5, -0.1, 0.5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLambertian(tt.albedo)
			if tt.valid && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, core.ErrInvalidAlbedo) {
				t.Errorf("Expected ErrInvalidAlbedo, got %v", err)
			}
		})
	}
}
