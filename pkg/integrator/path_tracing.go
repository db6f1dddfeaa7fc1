package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// DefaultMaxDepth is the number of scatter events after which a path returns black
const DefaultMaxDepth = 50

// ShadowAcne is the minimum hit distance, keeping scattered rays from re-hitting their origin
const ShadowAcne = 0.001

// PathTracingIntegrator implements unidirectional path tracing with a sky gradient as the only
// light source
type PathTracingIntegrator struct {
	MaxDepth int
}

// NewPathTracingIntegrator creates a new path tracing integrator.
// A non-positive maxDepth selects DefaultMaxDepth.
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &PathTracingIntegrator{MaxDepth: maxDepth}
}

// RayColor computes the color for a single ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world World, sampler core.Sampler) (core.Vec3, error) {
	color, _, err := pt.Trace(ray, world, sampler)
	return color, err
}

// Trace follows a path until it escapes, is absorbed, or reaches MaxDepth scatter events.
// It returns the radiance estimate and the number of scatter events.
func (pt *PathTracingIntegrator) Trace(ray core.Ray, world World, sampler core.Sampler) (core.Vec3, int, error) {
	if !ray.Direction.IsFinite() || ray.Direction.LengthSquared() == 0 {
		return core.Vec3{}, 0, fmt.Errorf("trace from %v: %w", ray.Origin, core.ErrDegenerateRay)
	}

	throughput := core.NewVec3(1, 1, 1)
	depth := 0

	for {
		hit, isHit := world.Hit(ray, ShadowAcne, math.Inf(1))
		if !isHit {
			color := throughput.MultiplyVec(pt.backgroundGradient(ray, world))
			if !color.IsFinite() {
				return core.Vec3{}, depth, fmt.Errorf("after %d bounces: %w", depth, core.ErrNonFiniteRadiance)
			}
			return color, depth, nil
		}

		// Reaching the cap is a normal outcome, not an error
		if depth >= pt.MaxDepth {
			return core.Vec3{}, depth, nil
		}

		material := world.Material(hit.MaterialID)
		if material == nil {
			return core.Vec3{}, depth, fmt.Errorf("material %d: %w", hit.MaterialID, core.ErrUnknownMaterial)
		}

		scatter, didScatter := material.Scatter(ray, hit, sampler)
		if !didScatter {
			return core.Vec3{}, depth, nil
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
		depth++
	}
}

// backgroundGradient returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) backgroundGradient(r core.Ray, world World) core.Vec3 {
	topColor, bottomColor := world.BackgroundColors()

	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}
