package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/df07/go-sphere-pathtracer/pkg/output"
)

// Config holds runtime settings for the CLI and the web server.
// Precedence: command line flag, then environment (including .env), then the built-in default.
type Config struct {
	RootDir   string // Directory holding .env, scenes/ and output/
	Scene     string // Builtin scene id or path to a .json scene description
	SceneDir  string // Directory scanned for scene descriptions
	OutputDir string // Directory for rendered images
	Format    string // Output extension: ppm, png, jpg, ...

	Width    int // 0 keeps the scene's value
	Height   int // 0 keeps the scene's value
	Samples  int // 0 keeps the scene's value
	MaxDepth int // 0 keeps the scene's value

	Passes   int   // Progressive passes; 0 renders a single scanline pass
	Workers  int   // 0 = CPU count
	TileSize int   // Tile edge in pixels
	Seed     int64 // Base random seed

	Thumbnail int  // Max thumbnail edge; 0 disables
	Annotate  bool // Draw a stats caption on saved PNG/JPEG output

	Upload bool // Upload the result to S3 as well as writing it locally
	S3     output.S3Config

	ServerAddress string // Web server listen address
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		RootDir:       ".",
		Scene:         "default",
		SceneDir:      "scenes",
		OutputDir:     "output",
		Format:        "png",
		Passes:        0,
		TileSize:      64,
		Seed:          42,
		ServerAddress: ":8080",
		S3: output.S3Config{
			Region:  "us-east-1",
			Timeout: output.DefaultUploadTimeout,
		},
	}
}

// getEnv returns the environment value for key, or fallback when unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// FromEnv loads RootDir/.env if present, then applies environment variables over Default
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.RootDir = getEnv("PATHTRACER_ROOT_DIR", cfg.RootDir)

	// A missing .env is normal
	_ = godotenv.Load(filepath.Join(cfg.RootDir, ".env"))

	cfg.Scene = getEnv("PATHTRACER_SCENE", cfg.Scene)
	cfg.SceneDir = getEnv("PATHTRACER_SCENE_DIR", filepath.Join(cfg.RootDir, cfg.SceneDir))
	cfg.OutputDir = getEnv("PATHTRACER_OUTPUT_DIR", filepath.Join(cfg.RootDir, cfg.OutputDir))
	cfg.Format = getEnv("PATHTRACER_FORMAT", cfg.Format)
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)

	ints := []struct {
		key string
		dst *int
	}{
		{"PATHTRACER_WIDTH", &cfg.Width},
		{"PATHTRACER_HEIGHT", &cfg.Height},
		{"PATHTRACER_SAMPLES", &cfg.Samples},
		{"PATHTRACER_MAX_DEPTH", &cfg.MaxDepth},
		{"PATHTRACER_PASSES", &cfg.Passes},
		{"PATHTRACER_WORKERS", &cfg.Workers},
		{"PATHTRACER_TILE_SIZE", &cfg.TileSize},
		{"PATHTRACER_THUMBNAIL", &cfg.Thumbnail},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, *v.dst)
		if err != nil {
			return Config{}, err
		}
		*v.dst = n
	}

	seed, err := getEnvInt("PATHTRACER_SEED", int(cfg.Seed))
	if err != nil {
		return Config{}, err
	}
	cfg.Seed = int64(seed)

	if cfg.Annotate, err = getEnvBool("PATHTRACER_ANNOTATE", cfg.Annotate); err != nil {
		return Config{}, err
	}
	if cfg.Upload, err = getEnvBool("PATHTRACER_UPLOAD", cfg.Upload); err != nil {
		return Config{}, err
	}

	cfg.S3.AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.S3.SecretKey = os.Getenv("S3_SECRET_KEY")
	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3.Region = getEnv("S3_REGION", cfg.S3.Region)
	cfg.S3.Bucket = os.Getenv("S3_BUCKET")
	cfg.S3.ACL = os.Getenv("S3_ACL")
	if timeout := os.Getenv("S3_UPLOAD_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("S3_UPLOAD_TIMEOUT: %w", err)
		}
		cfg.S3.Timeout = d
	}

	return cfg, nil
}

// Load builds the configuration from the environment and then parses args as flags.
// On flag.ErrHelp the returned configuration holds the environment and every flag given
// before -help.
func Load(name string, args []string, errOutput io.Writer) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if errOutput != nil {
		fs.SetOutput(errOutput)
	}
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegisterFlags binds every field to a flag, using the current values as defaults
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Scene, "scene", c.Scene, "Builtin scene id or path to a .json scene description")
	fs.StringVar(&c.SceneDir, "scene-dir", c.SceneDir, "Directory containing .json scene descriptions")
	fs.StringVar(&c.OutputDir, "output", c.OutputDir, "Output directory")
	fs.StringVar(&c.Format, "format", c.Format, "Output format: ppm, png, jpg, gif, tif or bmp")
	fs.IntVar(&c.Width, "width", c.Width, "Image width (0 = scene default)")
	fs.IntVar(&c.Height, "height", c.Height, "Image height (0 = scene default)")
	fs.IntVar(&c.Samples, "samples", c.Samples, "Samples per pixel (0 = scene default)")
	fs.IntVar(&c.MaxDepth, "max-depth", c.MaxDepth, "Maximum scatter events per path (0 = scene default)")
	fs.IntVar(&c.Passes, "passes", c.Passes, "Progressive passes (0 = single scanline pass)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Parallel workers (0 = CPU count)")
	fs.IntVar(&c.TileSize, "tile-size", c.TileSize, "Tile size for progressive rendering")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Random seed")
	fs.IntVar(&c.Thumbnail, "thumb", c.Thumbnail, "Also write a thumbnail no larger than this (0 = off)")
	fs.BoolVar(&c.Annotate, "annotate", c.Annotate, "Draw render statistics onto the saved image")
	fs.BoolVar(&c.Upload, "upload", c.Upload, "Upload the result to the configured S3 bucket")
	fs.StringVar(&c.ServerAddress, "addr", c.ServerAddress, "Web server listen address")
}

// Validate rejects settings no render can use
func (c Config) Validate() error {
	if c.Scene == "" {
		return fmt.Errorf("scene cannot be empty")
	}
	for name, v := range map[string]int{
		"width": c.Width, "height": c.Height, "samples": c.Samples, "max-depth": c.MaxDepth,
		"passes": c.Passes, "workers": c.Workers, "thumb": c.Thumbnail,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("tile-size must be positive, got %d", c.TileSize)
	}
	if c.Upload && c.S3.Bucket == "" {
		return fmt.Errorf("upload requested but S3_BUCKET is not set")
	}
	return nil
}
