package main

import (
	"log"

	"github.com/joho/godotenv"

	"odiapdf/cmd"
	"odiapdf/internal/config"
	"odiapdf/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration; configuration errors are fatal at startup, never
	// deferred to per-page processing.
	cfg, err := config.Load()
	if err != nil {
		if setupErr := logger.Setup(logger.DefaultConfig()); setupErr != nil {
			log.Fatalf("Failed to initialize logger: %v", setupErr)
		}
		l := logger.GetLogger()
		l.Fatal().Err(err).Msg("Invalid configuration")
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}
