package material

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// fixedSampler returns the same value for every draw and counts draws
type fixedSampler struct {
	value float64
	draws int
}

func (s *fixedSampler) Get1D() float64 {
	s.draws++
	return s.value
}

func (s *fixedSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.Get1D(), s.Get1D())
}

func (s *fixedSampler) Get3D() core.Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	return core.NewVec3(x, y, s.Get1D())
}

// sequenceSampler replays values in order, cycling when exhausted
type sequenceSampler struct {
	values []float64
	next   int
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func (s *sequenceSampler) Get2D() core.Vec2 {
	x := s.Get1D()
	return core.NewVec2(x, s.Get1D())
}

func (s *sequenceSampler) Get3D() core.Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	return core.NewVec3(x, y, s.Get1D())
}

const tolerance = 1e-10

func vecNear(a, b core.Vec3) bool {
	return math.Abs(a.X-b.X) < tolerance &&
		math.Abs(a.Y-b.Y) < tolerance &&
		math.Abs(a.Z-b.Z) < tolerance
}

// floorHit is a hit on the plane y = 0 with an upward normal
func floorHit() core.HitRecord {
	return core.HitRecord{
		T:      1.0,
		Point:  core.NewVec3(0, 0, 0),
		Normal: core.NewVec3(0, 1, 0),
	}
}
