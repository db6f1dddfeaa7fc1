package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/web/server"
)

func main() {
	cfg, err := config.Load("pathtracer-web", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(2)
	}

	// Saved renders go to S3 when uploads are enabled, otherwise to the output directory
	var sink output.Sink = output.FileSink{Dir: cfg.OutputDir}
	if cfg.Upload {
		s3Sink, err := output.NewS3Sink(cfg.S3)
		if err != nil {
			log.Printf("Error creating S3 sink: %v", err)
			os.Exit(1)
		}
		sink = s3Sink
	}

	webServer := server.NewServer(cfg.ServerAddress, cfg.SceneDir, sink)

	log.Printf("Sphere Path Tracer Web Server")
	log.Printf("Visit http://localhost%s to start rendering", cfg.ServerAddress)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
