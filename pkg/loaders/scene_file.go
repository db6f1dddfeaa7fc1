package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Vec3Spec is a JSON [x, y, z] triple
type Vec3Spec [3]float64

func (v Vec3Spec) vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// SceneFile is the JSON scene description
type SceneFile struct {
	Name        string         `json:"name"`
	Variant     string         `json:"variant"`
	Description string         `json:"description"`
	Group       string         `json:"group"`
	Camera      *CameraSpec    `json:"camera"`
	Sampling    *SamplingSpec  `json:"sampling"`
	Sky         *SkySpec       `json:"sky"`
	Materials   []MaterialSpec `json:"materials"`
	Spheres     []SphereSpec   `json:"spheres"`
}

// CameraSpec mirrors renderer.CameraConfig; omitted fields take defaults
type CameraSpec struct {
	LookFrom      *Vec3Spec `json:"lookFrom"`
	LookAt        *Vec3Spec `json:"lookAt"`
	Up            *Vec3Spec `json:"up"`
	VFov          float64   `json:"vfov"`
	AspectRatio   float64   `json:"aspectRatio"`
	Aperture      float64   `json:"aperture"`
	FocusDistance float64   `json:"focusDistance"`
}

// SamplingSpec mirrors renderer.SamplingConfig; zero fields take defaults
type SamplingSpec struct {
	Width           int `json:"width"`
	Height          int `json:"height"`
	SamplesPerPixel int `json:"samplesPerPixel"`
	MaxDepth        int `json:"maxDepth"`
}

// SkySpec sets the background gradient
type SkySpec struct {
	Top    Vec3Spec `json:"top"`
	Bottom Vec3Spec `json:"bottom"`
}

// MaterialSpec describes one named material
type MaterialSpec struct {
	Name            string    `json:"name"`
	Type            string    `json:"type"` // lambertian, metal or dielectric
	Albedo          *Vec3Spec `json:"albedo"`
	Fuzz            float64   `json:"fuzz"`
	RefractiveIndex float64   `json:"refractiveIndex"`
}

// SphereSpec places a sphere using a material name
type SphereSpec struct {
	Center   Vec3Spec `json:"center"`
	Radius   float64  `json:"radius"`
	Material string   `json:"material"`
}

// ParseSceneFile decodes a scene description. Unknown fields are rejected.
func ParseSceneFile(reader io.Reader) (*SceneFile, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var file SceneFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("error decoding scene description: %w", err)
	}
	return &file, nil
}

// LoadSceneFile loads and parses a scene description from disk
func LoadSceneFile(filename string) (*SceneFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	return ParseSceneFile(file)
}

// LoadScene loads a scene description and builds a frozen scene from it
func LoadScene(filename string, cameraOverrides ...renderer.CameraConfig) (*scene.Scene, error) {
	file, err := LoadSceneFile(filename)
	if err != nil {
		return nil, err
	}
	s, err := file.Build(cameraOverrides...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return s, nil
}

// DefaultCameraConfig is used for every camera field a description leaves out
func DefaultCameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		LookFrom: core.NewVec3(0, 0, 0),
		LookAt:   core.NewVec3(0, 0, -1),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     90,
	}
}

// Build converts the description into a frozen scene
func (f *SceneFile) Build(cameraOverrides ...renderer.CameraConfig) (*scene.Scene, error) {
	sampling := renderer.DefaultSamplingConfig()
	if f.Sampling != nil {
		sampling = renderer.MergeSamplingConfig(sampling, renderer.SamplingConfig{
			Width:           f.Sampling.Width,
			Height:          f.Sampling.Height,
			SamplesPerPixel: f.Sampling.SamplesPerPixel,
			MaxDepth:        f.Sampling.MaxDepth,
		})
	}

	cameraConfig := f.cameraConfig(sampling)
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	s := scene.NewScene(cameraConfig, sampling)
	if f.Sky != nil {
		s.TopColor = f.Sky.Top.vec3()
		s.BottomColor = f.Sky.Bottom.vec3()
	}

	ids := make(map[string]core.MaterialID, len(f.Materials))
	for i, spec := range f.Materials {
		if spec.Name == "" {
			return nil, fmt.Errorf("material %d has no name", i)
		}
		if _, exists := ids[spec.Name]; exists {
			return nil, fmt.Errorf("duplicate material name %q", spec.Name)
		}

		m, err := buildMaterial(spec)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", spec.Name, err)
		}
		id, err := s.AddMaterial(m)
		if err != nil {
			return nil, err
		}
		ids[spec.Name] = id
	}

	for i, spec := range f.Spheres {
		id, ok := ids[spec.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: material %q: %w", i, spec.Material, core.ErrUnknownMaterial)
		}
		if err := s.AddSphere(spec.Center.vec3(), spec.Radius, id); err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
	}

	if err := s.Freeze(); err != nil {
		return nil, err
	}
	return s, nil
}

func (f *SceneFile) cameraConfig(sampling renderer.SamplingConfig) renderer.CameraConfig {
	config := DefaultCameraConfig()
	config.AspectRatio = float64(sampling.Width) / float64(sampling.Height)

	spec := f.Camera
	if spec == nil {
		return config
	}
	if spec.LookFrom != nil {
		config.LookFrom = spec.LookFrom.vec3()
	}
	if spec.LookAt != nil {
		config.LookAt = spec.LookAt.vec3()
	}
	if spec.Up != nil {
		config.Up = spec.Up.vec3()
	}
	if spec.VFov != 0 {
		config.VFov = spec.VFov
	}
	if spec.AspectRatio != 0 {
		config.AspectRatio = spec.AspectRatio
	}
	config.Aperture = spec.Aperture
	config.FocusDistance = spec.FocusDistance
	return config
}

func buildMaterial(spec MaterialSpec) (core.Material, error) {
	albedo := core.NewVec3(0.5, 0.5, 0.5)
	if spec.Albedo != nil {
		albedo = spec.Albedo.vec3()
	}

	var (
		m   core.Material
		err error
	)
	switch strings.ToLower(spec.Type) {
	case "lambertian", "diffuse":
		m, err = material.NewLambertian(albedo)
	case "metal":
		m, err = material.NewMetal(albedo, spec.Fuzz)
	case "dielectric", "glass":
		m, err = material.NewDielectric(spec.RefractiveIndex)
	default:
		return nil, fmt.Errorf("unknown material type %q", spec.Type)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ValidateScenePath checks that a client-supplied path names a .json file inside the scenes/
// directory (or the temp directory, for tests)
func ValidateScenePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Null bytes could indicate path manipulation
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	tempDir := filepath.Clean(os.TempDir()) + string(filepath.Separator)

	if !strings.HasPrefix(cleanPath, "scenes"+string(filepath.Separator)) &&
		!strings.HasPrefix(cleanPath, tempDir) {
		return fmt.Errorf("file path must be in scenes/ directory")
	}

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid file path: directory traversal not allowed")
	}

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return fmt.Errorf("invalid file type: only .json files are allowed")
	}

	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	return nil
}
