package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// ErrFrozen is returned when a frozen scene is modified
var ErrFrozen = errors.New("scene is frozen")

// Scene contains all the elements needed for rendering. Materials live in an arena owned by
// the scene; spheres refer to them by MaterialID. After Freeze the scene is read-only and safe
// for concurrent use.
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	SamplingConfig renderer.SamplingConfig
	TopColor       core.Vec3 // Sky color straight up
	BottomColor    core.Vec3 // Sky color straight down
	Materials      []core.Material
	Spheres        []*geometry.Sphere

	world  *geometry.HitableList
	frozen bool
}

// NewScene creates an empty scene with the default sky
func NewScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) *Scene {
	return &Scene{
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
		TopColor:       core.NewVec3(0.5, 0.7, 1.0), // Blue sky
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0), // White horizon
	}
}

// AddMaterial stores m in the arena and returns its handle
func (s *Scene) AddMaterial(m core.Material) (core.MaterialID, error) {
	if s.frozen {
		return 0, ErrFrozen
	}
	s.Materials = append(s.Materials, m)
	return core.MaterialID(len(s.Materials) - 1), nil
}

// AddSphere creates a sphere referring to material id
func (s *Scene) AddSphere(center core.Vec3, radius float64, id core.MaterialID) error {
	if s.frozen {
		return ErrFrozen
	}
	sphere, err := geometry.NewSphere(center, radius, id)
	if err != nil {
		return err
	}
	s.Spheres = append(s.Spheres, sphere)
	return nil
}

// Freeze validates material references, builds the camera and the hitable list.
// An empty scene is valid and renders as sky.
func (s *Scene) Freeze() error {
	if s.frozen {
		return nil
	}

	for i, sphere := range s.Spheres {
		if int(sphere.MaterialID) < 0 || int(sphere.MaterialID) >= len(s.Materials) || s.Materials[sphere.MaterialID] == nil {
			return fmt.Errorf("sphere %d refers to material %d of %d: %w",
				i, sphere.MaterialID, len(s.Materials), core.ErrUnknownMaterial)
		}
	}

	camera, err := renderer.NewCamera(s.CameraConfig)
	if err != nil {
		return fmt.Errorf("scene camera: %w", err)
	}

	world := geometry.NewHitableList()
	for _, sphere := range s.Spheres {
		world.Add(sphere)
	}

	s.Camera = camera
	s.world = world
	s.frozen = true
	return nil
}

// Frozen reports whether Freeze has succeeded
func (s *Scene) Frozen() bool {
	return s.frozen
}

// Hit returns the closest sphere intersection. An unfrozen scene hits nothing.
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	if s.world == nil {
		return core.HitRecord{}, false
	}
	return s.world.Hit(ray, tMin, tMax)
}

// Material resolves a material handle, or nil when id is outside the arena
func (s *Scene) Material(id core.MaterialID) core.Material {
	if int(id) < 0 || int(id) >= len(s.Materials) {
		return nil
	}
	return s.Materials[id]
}

// BackgroundColors returns the sky gradient colors
func (s *Scene) BackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetCamera returns the camera built by Freeze
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetSamplingConfig returns the scene's sampling configuration
func (s *Scene) GetSamplingConfig() renderer.SamplingConfig {
	return s.SamplingConfig
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Spheres)
}

// sceneBuilder accumulates the first error while a scene is assembled
type sceneBuilder struct {
	scene *Scene
	err   error
}

func (b *sceneBuilder) material(m core.Material, err error) core.MaterialID {
	if b.err != nil {
		return 0
	}
	if err != nil {
		b.err = err
		return 0
	}
	id, err := b.scene.AddMaterial(m)
	if err != nil {
		b.err = err
	}
	return id
}

func (b *sceneBuilder) sphere(center core.Vec3, radius float64, id core.MaterialID) {
	if b.err != nil {
		return
	}
	b.err = b.scene.AddSphere(center, radius, id)
}

// finish freezes the scene unless an earlier step failed
func (b *sceneBuilder) finish() (*Scene, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.scene.Freeze(); err != nil {
		return nil, err
	}
	return b.scene, nil
}

// applyCameraOverrides merges the first override into base, as every builtin scene does
func applyCameraOverrides(base renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) > 0 {
		return renderer.MergeCameraConfig(base, overrides[0])
	}
	return base
}
