package loaders

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

const twoSphereScene = `{
  "name": "two-spheres",
  "description": "A glass ball on a matte floor",
  "group": "Test",
  "camera": {
    "lookFrom": [0, 1, 3],
    "lookAt": [0, 0, -1],
    "vfov": 40,
    "aperture": 0.1
  },
  "sampling": {"width": 40, "height": 20, "samplesPerPixel": 4},
  "sky": {"top": [0.2, 0.3, 0.9], "bottom": [1, 1, 1]},
  "materials": [
    {"name": "floor", "type": "lambertian", "albedo": [0.8, 0.8, 0]},
    {"name": "glass", "type": "dielectric", "refractiveIndex": 1.5},
    {"name": "mirror", "type": "metal", "albedo": [0.9, 0.9, 0.9], "fuzz": 0.3}
  ],
  "spheres": [
    {"center": [0, -100.5, -1], "radius": 100, "material": "floor"},
    {"center": [0, 0, -1], "radius": 0.5, "material": "glass"},
    {"center": [0, 0, -1], "radius": -0.45, "material": "glass"}
  ]
}`

func TestParseSceneFile(t *testing.T) {
	file, err := ParseSceneFile(strings.NewReader(twoSphereScene))
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}

	if file.Name != "two-spheres" || file.Group != "Test" {
		t.Errorf("Unexpected metadata: name=%q group=%q", file.Name, file.Group)
	}
	if len(file.Materials) != 3 {
		t.Errorf("Expected 3 materials, got %d", len(file.Materials))
	}
	if len(file.Spheres) != 3 {
		t.Errorf("Expected 3 spheres, got %d", len(file.Spheres))
	}
	if file.Spheres[2].Radius != -0.45 {
		t.Errorf("Expected negative radius to survive decoding, got %f", file.Spheres[2].Radius)
	}
}

func TestParseSceneFile_RejectsUnknownFields(t *testing.T) {
	_, err := ParseSceneFile(strings.NewReader(`{"spheres": [], "triangles": []}`))
	if err == nil {
		t.Error("Expected an error for an unknown field")
	}
}

func TestSceneFile_Build(t *testing.T) {
	file, err := ParseSceneFile(strings.NewReader(twoSphereScene))
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}

	s, err := file.Build()
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}

	if !s.Frozen() {
		t.Error("Built scene should be frozen")
	}
	if s.GetPrimitiveCount() != 3 {
		t.Errorf("Expected 3 spheres, got %d", s.GetPrimitiveCount())
	}

	sampling := s.GetSamplingConfig()
	if sampling.Width != 40 || sampling.Height != 20 || sampling.SamplesPerPixel != 4 {
		t.Errorf("Unexpected sampling config %+v", sampling)
	}
	if sampling.MaxDepth != renderer.DefaultSamplingConfig().MaxDepth {
		t.Errorf("Expected default max depth, got %d", sampling.MaxDepth)
	}

	// Aspect ratio falls back to width / height
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("Expected aspect ratio 2, got %f", s.CameraConfig.AspectRatio)
	}
	// Up was omitted
	if !s.CameraConfig.Up.Equals(core.NewVec3(0, 1, 0)) {
		t.Errorf("Expected default up vector, got %v", s.CameraConfig.Up)
	}

	top, bottom := s.BackgroundColors()
	if !top.Equals(core.NewVec3(0.2, 0.3, 0.9)) || !bottom.Equals(core.NewVec3(1, 1, 1)) {
		t.Errorf("Unexpected sky colors %v / %v", top, bottom)
	}

	// A ray straight down -z hits the glass shell first
	hit, ok := s.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.MaxFloat64)
	if !ok {
		t.Fatal("Expected the ray to hit the glass sphere")
	}
	if math.Abs(hit.T-0.5) > 1e-9 {
		t.Errorf("Expected hit at t=0.5, got %f", hit.T)
	}
	if _, isGlass := s.Material(hit.MaterialID).(*material.Dielectric); !isGlass {
		t.Errorf("Expected dielectric material, got %T", s.Material(hit.MaterialID))
	}
}

func TestSceneFile_BuildCameraOverride(t *testing.T) {
	file, err := ParseSceneFile(strings.NewReader(twoSphereScene))
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}

	s, err := file.Build(renderer.CameraConfig{VFov: 60})
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	if s.CameraConfig.VFov != 60 {
		t.Errorf("Expected overridden vfov 60, got %f", s.CameraConfig.VFov)
	}
	if !s.CameraConfig.LookFrom.Equals(core.NewVec3(0, 1, 3)) {
		t.Errorf("Override should keep lookFrom, got %v", s.CameraConfig.LookFrom)
	}
}

func TestSceneFile_BuildErrors(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		sentinel  error
		errSubstr string
	}{
		{
			name:     "unknown material name",
			json:     `{"materials": [], "spheres": [{"center": [0,0,0], "radius": 1, "material": "nope"}]}`,
			sentinel: core.ErrUnknownMaterial,
		},
		{
			name:      "unknown material type",
			json:      `{"materials": [{"name": "x", "type": "plastic"}]}`,
			errSubstr: "unknown material type",
		},
		{
			name:      "duplicate material name",
			json:      `{"materials": [{"name": "x", "type": "lambertian"}, {"name": "x", "type": "metal"}]}`,
			errSubstr: "duplicate material name",
		},
		{
			name:     "invalid albedo",
			json:     `{"materials": [{"name": "x", "type": "lambertian", "albedo": [1.5, 0, 0]}]}`,
			sentinel: core.ErrInvalidAlbedo,
		},
		{
			name:     "negative fuzz",
			json:     `{"materials": [{"name": "x", "type": "metal", "fuzz": -0.1}]}`,
			sentinel: core.ErrInvalidFuzz,
		},
		{
			name:     "missing refractive index",
			json:     `{"materials": [{"name": "x", "type": "dielectric"}]}`,
			sentinel: core.ErrInvalidRefractiveIndex,
		},
		{
			name: "zero radius",
			json: `{"materials": [{"name": "x", "type": "lambertian"}],
			        "spheres": [{"center": [0,0,0], "radius": 0, "material": "x"}]}`,
			sentinel: core.ErrInvalidRadius,
		},
		{
			name:     "degenerate camera",
			json:     `{"camera": {"lookFrom": [0,0,0], "lookAt": [0,0,0]}}`,
			sentinel: core.ErrInvalidCamera,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := ParseSceneFile(strings.NewReader(tt.json))
			if err != nil {
				t.Fatalf("Failed to parse scene: %v", err)
			}

			_, err = file.Build()
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected %v, got %v", tt.sentinel, err)
			}
			if tt.errSubstr != "" && !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Expected error containing %q, got %v", tt.errSubstr, err)
			}
		})
	}
}

func TestSceneFile_EmptySceneRendersSky(t *testing.T) {
	file, err := ParseSceneFile(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}
	s, err := file.Build()
	if err != nil {
		t.Fatalf("An empty scene should build, got %v", err)
	}
	if s.GetPrimitiveCount() != 0 {
		t.Errorf("Expected no spheres, got %d", s.GetPrimitiveCount())
	}
	if _, ok := s.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.MaxFloat64); ok {
		t.Error("Empty scene should not report hits")
	}
}

func TestLoadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(twoSphereScene), 0o644); err != nil {
		t.Fatalf("Failed to write scene file: %v", err)
	}

	s, err := LoadScene(path)
	if err != nil {
		t.Fatalf("Failed to load scene: %v", err)
	}
	if s.GetPrimitiveCount() != 3 {
		t.Errorf("Expected 3 spheres, got %d", s.GetPrimitiveCount())
	}

	if _, err := LoadScene(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestValidateScenePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"scenes directory", "scenes/cover.json", false},
		{"temp directory", filepath.Join(os.TempDir(), "cover.json"), false},
		{"temp directory sibling", filepath.Clean(os.TempDir()) + "evil/secret.json", true},
		{"scenes directory sibling", "scenes-private/cover.json", true},
		{"empty", "", true},
		{"outside scenes", "etc/passwd.json", true},
		{"traversal", "scenes/../../etc/passwd.json", true},
		{"wrong extension", "scenes/cover.pbrt", true},
		{"null byte", "scenes/cover\x00.json", true},
		{"too long", "scenes/" + strings.Repeat("a", 520) + ".json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScenePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScenePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestBundledSceneFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "scenes", "*.json"))
	if err != nil {
		t.Fatalf("Failed to list scene files: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no bundled scene files")
	}

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScene(path)
			if err != nil {
				t.Fatalf("Failed to load %s: %v", path, err)
			}
			if s.GetPrimitiveCount() == 0 {
				t.Errorf("Expected spheres in %s", path)
			}
		})
	}
}
