package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// MaterialID is a stable handle into a scene's material arena
type MaterialID int

// HitRecord contains information about a ray-sphere intersection
type HitRecord struct {
	T          float64    // Parameter t along the ray
	Point      Vec3       // Point of intersection
	Normal     Vec3       // (Point - Center) / Radius: unit length, outward for positive radius
	MaterialID MaterialID // Material of the hit object, owned by the scene
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Attenuation Vec3 // Color attenuation
	Scattered   Ray  // The outgoing ray
}

// Material interface for surfaces that can scatter rays.
// Returning false means the ray was absorbed.
type Material interface {
	Scatter(rayIn Ray, hit HitRecord, sampler Sampler) (ScatterResult, bool)
}
