package renderer

import (
	"fmt"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// constantSampler returns the same value for every draw and counts draws
type constantSampler struct {
	value float64
	draws int
}

func (s *constantSampler) Get1D() float64 {
	s.draws++
	return s.value
}

func (s *constantSampler) Get2D() core.Vec2 {
	x := s.Get1D()
	return core.NewVec2(x, s.Get1D())
}

func (s *constantSampler) Get3D() core.Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	return core.NewVec3(x, y, s.Get1D())
}

// recordingLogger keeps every formatted line
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// testScene implements Scene over a sphere list and a material slice
type testScene struct {
	camera    *Camera
	objects   *geometry.HitableList
	materials []core.Material
	sampling  SamplingConfig
}

func (s *testScene) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	return s.objects.Hit(ray, tMin, tMax)
}

func (s *testScene) Material(id core.MaterialID) core.Material {
	if int(id) < 0 || int(id) >= len(s.materials) {
		return nil
	}
	return s.materials[id]
}

func (s *testScene) BackgroundColors() (core.Vec3, core.Vec3) {
	return core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1.0, 1.0, 1.0)
}

func (s *testScene) GetCamera() *Camera                { return s.camera }
func (s *testScene) GetSamplingConfig() SamplingConfig { return s.sampling }

// forwardCamera looks down -z from the origin with a square 90 degree pinhole
func forwardCamera(t *testing.T, aspect float64) *Camera {
	t.Helper()
	camera, err := NewCamera(CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		AspectRatio:   aspect,
		Aperture:      0,
		FocusDistance: 1,
	})
	if err != nil {
		t.Fatalf("NewCamera failed: %v", err)
	}
	return camera
}

// newSphereScene places one grey diffuse sphere of radius 0.9 in front of the camera
func newSphereScene(t *testing.T, width, height, samples int) *testScene {
	t.Helper()
	grey, err := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	if err != nil {
		t.Fatalf("NewLambertian failed: %v", err)
	}
	sphere, err := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.9, 0)
	if err != nil {
		t.Fatalf("NewSphere failed: %v", err)
	}
	return &testScene{
		camera:    forwardCamera(t, float64(width)/float64(height)),
		objects:   geometry.NewHitableList(sphere),
		materials: []core.Material{grey},
		sampling:  SamplingConfig{Width: width, Height: height, SamplesPerPixel: samples, MaxDepth: 50},
	}
}

// newMixedScene has a diffuse ground, a fuzzy metal sphere and a glass sphere
func newMixedScene(t *testing.T, width, height int) *testScene {
	t.Helper()
	ground, _ := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	metal, _ := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	glass, _ := material.NewDielectric(1.5)

	list := geometry.NewHitableList()
	for _, s := range []struct {
		center core.Vec3
		radius float64
		id     core.MaterialID
	}{
		{core.NewVec3(0, -100.5, -1), 100, 0},
		{core.NewVec3(0.5, 0, -1), 0.5, 1},
		{core.NewVec3(-0.5, 0, -1), 0.5, 2},
	} {
		sphere, err := geometry.NewSphere(s.center, s.radius, s.id)
		if err != nil {
			t.Fatalf("NewSphere failed: %v", err)
		}
		list.Add(sphere)
	}

	return &testScene{
		camera:    forwardCamera(t, float64(width)/float64(height)),
		objects:   list,
		materials: []core.Material{ground, metal, glass},
		sampling:  SamplingConfig{Width: width, Height: height, SamplesPerPixel: 4, MaxDepth: 50},
	}
}
