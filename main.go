package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func main() {
	cfg, err := config.Load("pathtracer", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		printScenes(cfg.SceneDir)
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("Starting Sphere Path Tracer...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	keys, err := run(ctx, cfg, renderer.NewDefaultLogger())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, key := range keys {
		fmt.Printf("Render saved as %s\n", filepath.Join(cfg.OutputDir, key))
	}
}

func printScenes(sceneDir string) {
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.ListBuiltinScenes() {
		fmt.Printf("  %-14s %s\n", info.ID, info.Description)
	}
	files, _ := scene.ListSceneFiles(sceneDir)
	for _, info := range files {
		fmt.Printf("  %-14s %s\n", info.ID, info.DisplayName)
	}
	fmt.Println()
	fmt.Println("Output will be saved to <output>/<scene>/render_<timestamp>.<format>")
}

// run renders the configured scene and stores the image (and optional thumbnail) in every
// configured sink. It returns the keys written.
func run(ctx context.Context, cfg config.Config, logger core.Logger) ([]string, error) {
	s, err := createScene(cfg)
	if err != nil {
		return nil, err
	}

	sampling := s.GetSamplingConfig()
	logger.Printf("Rendering %s at %dx%d, %d samples/pixel, max depth %d\n",
		cfg.Scene, sampling.Width, sampling.Height, sampling.SamplesPerPixel, sampling.MaxDepth)

	fb, stats, err := render(ctx, s, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Printf("Render completed in %v\n", stats.Elapsed)
	logger.Printf("Samples per pixel: %.1f (range %d - %d), %.2f bounces per sample\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed, stats.AverageBounces())
	logger.Printf("Average luminance: %.3f\n", renderer.CalculateAverageLuminance(fb.ToRGBA()))

	var caption []string
	if cfg.Annotate {
		caption = output.StatsLines(sceneOutputName(cfg.Scene), stats)
	}

	ext := "." + strings.TrimPrefix(strings.ToLower(cfg.Format), ".")
	data, err := output.Encode(fb, ext, caption)
	if err != nil {
		return nil, err
	}

	sinks, err := createSinks(cfg)
	if err != nil {
		return nil, err
	}

	dir := sceneOutputName(cfg.Scene)
	timestamp := time.Now().Format("20060102_150405")
	key := fmt.Sprintf("%s/render_%s%s", dir, timestamp, ext)
	keys := []string{key}
	if err := putAll(ctx, sinks, key, data, output.ContentType(key)); err != nil {
		return nil, err
	}

	if cfg.Thumbnail > 0 {
		thumb, err := output.EncodePNG(output.Thumbnail(fb.ToRGBA(), cfg.Thumbnail))
		if err != nil {
			return nil, err
		}
		thumbKey := fmt.Sprintf("%s/thumb_%s.png", dir, timestamp)
		if err := putAll(ctx, sinks, thumbKey, thumb, "image/png"); err != nil {
			return nil, err
		}
		keys = append(keys, thumbKey)
	}

	return keys, nil
}

// createScene resolves a builtin id, a file id or a .json path and applies size overrides
func createScene(cfg config.Config) (*scene.Scene, error) {
	return loaders.OpenScene(loaders.SceneRequest{
		Name:     cfg.Scene,
		SceneDir: cfg.SceneDir,
		Seed:     cfg.Seed,
		Sampling: renderer.SamplingConfig{
			Width:           cfg.Width,
			Height:          cfg.Height,
			SamplesPerPixel: cfg.Samples,
			MaxDepth:        cfg.MaxDepth,
		},
	})
}

// render uses the single-stream scanline renderer when no passes are requested and the
// progressive tile renderer otherwise
func render(ctx context.Context, s *scene.Scene, cfg config.Config, logger core.Logger) (*renderer.Framebuffer, renderer.RenderStats, error) {
	sampling := s.GetSamplingConfig()

	if cfg.Passes == 0 {
		rt := renderer.NewRaytracer(s, sampling.Width, sampling.Height, logger)
		return rt.RenderPass(core.NewSeededSampler(cfg.Seed))
	}

	progressiveConfig := renderer.DefaultProgressiveConfig()
	progressiveConfig.TileSize = cfg.TileSize
	progressiveConfig.MaxSamplesPerPixel = sampling.SamplesPerPixel
	progressiveConfig.MaxPasses = cfg.Passes
	progressiveConfig.NumWorkers = cfg.Workers
	progressiveConfig.Seed = cfg.Seed

	pr := renderer.NewProgressiveRaytracer(s, sampling.Width, sampling.Height, progressiveConfig, logger)
	passChan, _, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{})

	var last *renderer.PassResult
	for result := range passChan {
		last = &result
	}
	if err := <-errChan; err != nil {
		return nil, renderer.RenderStats{}, err
	}
	if last == nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("render produced no passes")
	}
	return last.Image, last.Stats, nil
}

func createSinks(cfg config.Config) ([]output.Sink, error) {
	sinks := []output.Sink{output.FileSink{Dir: cfg.OutputDir}}
	if cfg.Upload {
		s3Sink, err := output.NewS3Sink(cfg.S3)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3Sink)
	}
	return sinks, nil
}

func putAll(ctx context.Context, sinks []output.Sink, key string, data []byte, contentType string) error {
	for _, sink := range sinks {
		if err := sink.Put(ctx, key, data, contentType); err != nil {
			return err
		}
	}
	return nil
}

// sceneOutputName returns the directory name used for a scene's renders
func sceneOutputName(sceneName string) string {
	if strings.HasSuffix(strings.ToLower(sceneName), ".json") {
		base := filepath.Base(sceneName)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name, ok := strings.CutPrefix(sceneName, "file:"); ok {
		return name
	}
	return sceneName
}
