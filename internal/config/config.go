package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"odiapdf/internal/extract"
	"odiapdf/internal/logger"
	"odiapdf/internal/ocr"
	"odiapdf/internal/preprocess"
)

// Supported OCR engine names.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

// Config holds the environment-driven defaults for extraction runs. CLI
// flags override individual fields per invocation.
type Config struct {
	// OCR Configuration
	Languages         string // Tesseract codes joined with "+", e.g. "ori+eng+hin"
	Engine            string // tesseract or vision
	PageSegMode       int
	EngineMode        int
	OCRTimeoutSeconds int

	// Extraction Configuration
	RenderDPI      int
	MinNativeChars int
	Preprocess     bool
	ContrastFactor float64
	BatchWorkers   int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment, falling back to the
// defaults used for the Odia document corpus. Validation failures are fatal
// at startup; they are never deferred to per-page processing.
func Load() (*Config, error) {
	config := &Config{
		Languages:         getEnv("OCR_LANGUAGES", "ori+eng+hin"),
		Engine:            getEnv("OCR_ENGINE", EngineTesseract),
		PageSegMode:       getEnvInt("OCR_PSM", ocr.DefaultPageSegMode),
		EngineMode:        getEnvInt("OCR_OEM", ocr.DefaultEngineMode),
		OCRTimeoutSeconds: getEnvInt("OCR_TIMEOUT_SECONDS", 120),
		RenderDPI:         getEnvInt("RENDER_DPI", 300),
		MinNativeChars:    getEnvInt("MIN_NATIVE_CHARS", 1),
		Preprocess:        getEnvBool("PREPROCESS", true),
		ContrastFactor:    getEnvFloat("CONTRAST_FACTOR", 2.0),
		BatchWorkers:      getEnvInt("BATCH_WORKERS", 4),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:         getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for values that would make a run
// meaningless: unknown language codes, unknown engines, non-positive
// resolutions or bounds.
func (c *Config) Validate() error {
	if _, err := ocr.ParseLanguages(c.Languages); err != nil {
		return err
	}
	if c.Engine != EngineTesseract && c.Engine != EngineVision {
		return fmt.Errorf("OCR_ENGINE must be %q or %q, got %q", EngineTesseract, EngineVision, c.Engine)
	}
	if c.RenderDPI < 1 {
		return fmt.Errorf("RENDER_DPI must be positive, got %d", c.RenderDPI)
	}
	if c.MinNativeChars < 1 {
		return fmt.Errorf("MIN_NATIVE_CHARS must be positive, got %d", c.MinNativeChars)
	}
	if c.OCRTimeoutSeconds < 1 {
		return fmt.Errorf("OCR_TIMEOUT_SECONDS must be positive, got %d", c.OCRTimeoutSeconds)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be positive, got %d", c.BatchWorkers)
	}
	return nil
}

// ExtractOptions converts the configuration into engine options.
func (c *Config) ExtractOptions() (extract.Options, error) {
	langs, err := ocr.ParseLanguages(c.Languages)
	if err != nil {
		return extract.Options{}, err
	}
	return extract.Options{
		Languages:      langs,
		DPI:            c.RenderDPI,
		MinNativeChars: c.MinNativeChars,
		PageSegMode:    c.PageSegMode,
		EngineMode:     c.EngineMode,
		OCRTimeout:     time.Duration(c.OCRTimeoutSeconds) * time.Second,
		Preprocess: preprocess.Config{
			Enabled:        c.Preprocess,
			ContrastFactor: c.ContrastFactor,
		},
		Workers: c.BatchWorkers,
	}, nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
