package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Request limits shared by render, scene-config and inspect
const (
	MinImageSize    = 16
	MaxImageSize    = 2000
	MaxSamples      = 10000
	MaxPasses       = 1000
	MaxDepth        = 500
	DefaultTileSize = 64
)

// Server handles web requests for the path tracer
type Server struct {
	addr      string
	sceneDir  string
	staticDir string
	sink      output.Sink // Receives final renders when a request asks to save; may be nil
}

// NewServer creates a new web server. sink may be nil, in which case save requests are refused.
func NewServer(addr, sceneDir string, sink output.Sink) *Server {
	return &Server{
		addr:      addr,
		sceneDir:  sceneDir,
		staticDir: "static/",
		sink:      sink,
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene       string `json:"scene"`       // Builtin id or "file:<name>"
	Width       int    `json:"width"`       // Image width (0 = scene default)
	Height      int    `json:"height"`      // Image height (0 = scene default)
	MaxSamples  int    `json:"maxSamples"`  // Samples per pixel (0 = scene default)
	MaxPasses   int    `json:"maxPasses"`   // Progressive passes
	MaxDepth    int    `json:"maxDepth"`    // Scatter limit (0 = scene default)
	Seed        int64  `json:"seed"`        // Base seed for tiles and random scenes
	PreviewSize int    `json:"previewSize"` // Longest edge of pass images (0 = full size)
	Save        bool   `json:"save"`        // Store the final image in the server's sink
}

// Handler returns the router for all endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists builtin scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	response, err := scene.ListAllScenes(s.sceneDir)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(&RenderRequest{Scene: sceneName})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	config := sceneObj.GetSamplingConfig()
	camera := sceneObj.CameraConfig
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"spheres":         sceneObj.GetPrimitiveCount(),
		},
		"camera": map[string]interface{}{
			"lookFrom":      vecArray(camera.LookFrom),
			"lookAt":        vecArray(camera.LookAt),
			"vfov":          camera.VFov,
			"aperture":      camera.Aperture,
			"focusDistance": camera.FocusDistance,
			"forward":       vecArray(sceneObj.GetCamera().GetCameraForward()),
			"lensRadius":    sceneObj.GetCamera().LensRadius(),
		},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": MinImageSize, "max": MaxImageSize},
			"height":     map[string]int{"min": MinImageSize, "max": MaxImageSize},
			"maxSamples": map[string]int{"min": 1, "max": MaxSamples},
			"maxPasses":  map[string]int{"min": 1, "max": MaxPasses},
			"maxDepth":   map[string]int{"min": 1, "max": MaxDepth},
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// parseCommonSceneParams parses the parameters that select and size a scene
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, MinImageSize, MaxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", 0, MinImageSize, MaxImageSize); err != nil {
		return err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 1, MaxDepth); err != nil {
		return err
	}
	if value := query.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
	} else {
		req.Seed = renderer.DefaultProgressiveConfig().Seed
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene builds the requested scene. Clients may name builtin scenes and scene files by
// id; direct paths must stay inside the scenes directory.
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	if strings.HasSuffix(strings.ToLower(req.Scene), ".json") {
		if err := loaders.ValidateScenePath(req.Scene); err != nil {
			return nil, err
		}
	}

	return loaders.OpenScene(loaders.SceneRequest{
		Name:     req.Scene,
		SceneDir: s.sceneDir,
		Seed:     req.Seed,
		Sampling: renderer.SamplingConfig{
			Width:           req.Width,
			Height:          req.Height,
			SamplesPerPixel: req.MaxSamples,
			MaxDepth:        req.MaxDepth,
		},
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
