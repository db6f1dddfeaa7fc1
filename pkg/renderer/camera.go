package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 = pinhole
	FocusDistance float64   // Distance to the focal plane, 0 = distance to LookAt
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}

	if !override.LookFrom.Equals(zero) {
		result.LookFrom = override.LookFrom
	}
	if !override.LookAt.Equals(zero) {
		result.LookAt = override.LookAt
	}
	if !override.Up.Equals(zero) {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}

	return result
}

// Camera generates primary rays through a thin lens. It is immutable after construction.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Camera basis: right, up, backward
	lensRadius      float64
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := validateCameraConfig(config); err != nil {
		return nil, err
	}

	w, err := config.LookFrom.Subtract(config.LookAt).UnitVector()
	if err != nil {
		return nil, fmt.Errorf("look direction: %w", core.ErrInvalidCamera)
	}
	side := config.Up.Cross(w)
	u, err := side.UnitVector()
	if err != nil || side.NearZero() {
		return nil, fmt.Errorf("up vector %v is parallel to the view direction: %w", config.Up, core.ErrInvalidCamera)
	}
	v := w.Cross(u)

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.LookFrom.Subtract(config.LookAt).Length()
	}

	theta := mgl64.DegToRad(config.VFov)
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight

	origin := config.LookFrom
	lowerLeftCorner := origin.
		Subtract(u.Multiply(halfWidth * focusDistance)).
		Subtract(v.Multiply(halfHeight * focusDistance)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      u.Multiply(2 * halfWidth * focusDistance),
		vertical:        v.Multiply(2 * halfHeight * focusDistance),
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}, nil
}

func validateCameraConfig(config CameraConfig) error {
	if !config.LookFrom.IsFinite() || !config.LookAt.IsFinite() || !config.Up.IsFinite() {
		return fmt.Errorf("non-finite camera vectors: %w", core.ErrInvalidCamera)
	}
	if config.LookFrom.Equals(config.LookAt) {
		return fmt.Errorf("lookFrom equals lookAt %v: %w", config.LookAt, core.ErrInvalidCamera)
	}
	if math.IsNaN(config.VFov) || config.VFov <= 0 || config.VFov >= 180 {
		return fmt.Errorf("vertical fov %v outside (0, 180): %w", config.VFov, core.ErrInvalidCamera)
	}
	if math.IsNaN(config.AspectRatio) || math.IsInf(config.AspectRatio, 0) || config.AspectRatio <= 0 {
		return fmt.Errorf("aspect ratio %v: %w", config.AspectRatio, core.ErrInvalidCamera)
	}
	if math.IsNaN(config.Aperture) || math.IsInf(config.Aperture, 0) || config.Aperture < 0 {
		return fmt.Errorf("aperture %v: %w", config.Aperture, core.ErrInvalidCamera)
	}
	if math.IsNaN(config.FocusDistance) || math.IsInf(config.FocusDistance, 0) {
		return fmt.Errorf("focus distance %v: %w", config.FocusDistance, core.ErrInvalidCamera)
	}
	return nil
}

// GetRay generates a ray for viewport coordinates (s, t) where 0 <= s,t <= 1 and t = 0 is the
// bottom edge. A lens sample is always drawn, even for a pinhole camera.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
	offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))

	origin := c.origin.Add(offset)
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// GetCameraForward returns the unit view direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// LensRadius returns half the aperture
func (c *Camera) LensRadius() float64 {
	return c.lensRadius
}
