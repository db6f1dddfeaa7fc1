package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	MaterialID   int                    `json:"materialId"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// extractMaterialInfo extracts detailed material information with type assertions
func (s *Server) extractMaterialInfo(mat core.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

func hexColor(c core.Vec3) string {
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// centerSampler returns 0.5 for every draw, which puts camera rays at the lens center
type centerSampler struct{}

func (centerSampler) Get1D() float64   { return 0.5 }
func (centerSampler) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }
func (centerSampler) Get3D() core.Vec3 { return core.NewVec3(0.5, 0.5, 0.5) }

// InspectResult contains information about the sphere hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord core.HitRecord
	Sphere    *geometry.Sphere // The sphere that was hit
}

// inspectPixel casts a ray through the center of the pixel (y = 0 is the top row) and
// returns the first sphere hit
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	camera := sceneObj.GetCamera()
	if camera == nil {
		return InspectResult{Hit: false}
	}

	u := (float64(pixelX) + 0.5) / float64(width)
	v := (float64(height-pixelY) - 0.5) / float64(height)
	ray := camera.GetRay(u, v, centerSampler{})

	hit, isHit := sceneObj.Hit(ray, integrator.ShadowAcne, math.MaxFloat64)
	if !isHit {
		return InspectResult{Hit: false}
	}

	// The list does not report which sphere it hit, so find the one at the same distance
	for _, sphere := range sceneObj.Spheres {
		if sphereHit, ok := sphere.Hit(ray, integrator.ShadowAcne, hit.T+integrator.ShadowAcne); ok && sphereHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Sphere: sphere}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit}
}

// extractGeometryInfo extracts the sphere's parameters
func (s *Server) extractGeometryInfo(sphere *geometry.Sphere) map[string]interface{} {
	properties := make(map[string]interface{})
	if sphere == nil {
		return properties
	}
	properties["center"] = vecArray(sphere.Center)
	properties["radius"] = sphere.Radius
	properties["hollow"] = sphere.Radius < 0
	return properties
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	sceneObj, err := s.createScene(inspectReq)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	sampling := sceneObj.GetSamplingConfig()
	if pixelX < 0 || pixelX >= sampling.Width || pixelY < 0 || pixelY >= sampling.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sceneObj, sampling.Width, sampling.Height, pixelX, pixelY)
	if !result.Hit {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := s.extractMaterialInfo(sceneObj.Material(result.HitRecord.MaterialID))

	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		MaterialID:   int(result.HitRecord.MaterialID),
		Point:        vecArray(result.HitRecord.Point),
		Normal:       vecArray(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.Normal.Dot(result.HitRecord.Point.Subtract(sceneObj.CameraConfig.LookFrom)) < 0,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": s.extractGeometryInfo(result.Sphere),
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
