package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"odiapdf/internal/config"
	"odiapdf/internal/extract"
	"odiapdf/internal/ocr"
	"odiapdf/internal/pdf"
)

// addExtractionFlags registers the flags shared by the extract and batch
// commands. Environment configuration provides the defaults; a flag set on
// the command line wins.
func addExtractionFlags(cmd *cobra.Command) {
	cmd.Flags().String("languages", "ori+eng+hin", "OCR languages as Tesseract codes joined with + (e.g. ori+eng+hin)")
	cmd.Flags().String("engine", config.EngineTesseract, "OCR engine: tesseract or vision")
	cmd.Flags().Int("dpi", 300, "Rasterization resolution for the OCR fallback")
	cmd.Flags().Int("psm", ocr.DefaultPageSegMode, "Tesseract page segmentation mode")
	cmd.Flags().Int("oem", ocr.DefaultEngineMode, "Tesseract OCR engine mode")
	cmd.Flags().Int("ocr-timeout", 120, "Per-page OCR timeout in seconds")
	cmd.Flags().Bool("no-preprocess", false, "Disable image preprocessing before OCR")
	cmd.Flags().Float64("contrast", 2.0, "Contrast enhancement factor for preprocessing")
	cmd.Flags().Int("min-chars", 1, "Minimum native characters (after trimming) before skipping OCR")
	cmd.Flags().StringP("range", "r", "", "Page range, 1-based inclusive (e.g. 5 or 3-12; default all pages)")
}

// resolveOptions merges environment configuration with the command's flags
// into validated extraction options.
func resolveOptions(cmd *cobra.Command) (*config.Config, extract.Options, extract.PageRange, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, extract.Options{}, extract.PageRange{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("languages") {
		cfg.Languages, _ = flags.GetString("languages")
	}
	if flags.Changed("engine") {
		cfg.Engine, _ = flags.GetString("engine")
	}
	if flags.Changed("dpi") {
		cfg.RenderDPI, _ = flags.GetInt("dpi")
	}
	if flags.Changed("psm") {
		cfg.PageSegMode, _ = flags.GetInt("psm")
	}
	if flags.Changed("oem") {
		cfg.EngineMode, _ = flags.GetInt("oem")
	}
	if flags.Changed("ocr-timeout") {
		cfg.OCRTimeoutSeconds, _ = flags.GetInt("ocr-timeout")
	}
	if flags.Changed("contrast") {
		cfg.ContrastFactor, _ = flags.GetFloat64("contrast")
	}
	if flags.Changed("min-chars") {
		cfg.MinNativeChars, _ = flags.GetInt("min-chars")
	}
	if noPre, _ := flags.GetBool("no-preprocess"); noPre {
		cfg.Preprocess = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, extract.Options{}, extract.PageRange{}, err
	}

	opts, err := cfg.ExtractOptions()
	if err != nil {
		return nil, extract.Options{}, extract.PageRange{}, err
	}

	rangeStr, _ := flags.GetString("range")
	pageRange, err := extract.ParseRange(rangeStr)
	if err != nil {
		return nil, extract.Options{}, extract.PageRange{}, err
	}

	return cfg, opts, pageRange, nil
}

// newOCREngine constructs the configured OCR engine and verifies it is
// usable before any page is processed. The returned func releases engine
// resources.
func newOCREngine(ctx context.Context, cfg *config.Config, opts extract.Options, log zerolog.Logger) (ocr.Engine, func(), error) {
	switch cfg.Engine {
	case config.EngineVision:
		engine, err := ocr.NewVisionEngine(ctx)
		if err != nil {
			if errors.Is(err, ocr.ErrMissingCredentials) {
				return nil, nil, fmt.Errorf("Google Cloud credentials not configured. Set GOOGLE_APPLICATION_CREDENTIALS "+
					"to a service account JSON file path or GOOGLE_CREDENTIALS to inline JSON: %w", err)
			}
			return nil, nil, fmt.Errorf("failed to create Vision OCR engine: %w", err)
		}
		log.Debug().Msg("Vision OCR engine created")
		return engine, func() {
			if err := engine.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Vision client")
			}
		}, nil
	default:
		engine := ocr.NewTesseractEngine()
		if err := engine.Check(opts.Languages); err != nil {
			if errors.Is(err, ocr.ErrEngineUnavailable) {
				return nil, nil, fmt.Errorf("Tesseract is not installed or not on the library path. "+
					"Install it with your package manager (e.g. apt-get install tesseract-ocr): %w", err)
			}
			if errors.Is(err, ocr.ErrUnsupportedLanguage) {
				return nil, nil, fmt.Errorf("missing Tesseract language packs for %s. "+
					"Install them (e.g. apt-get install tesseract-ocr-ori tesseract-ocr-hin): %w", cfg.Languages, err)
			}
			return nil, nil, err
		}
		log.Debug().Msg("Tesseract OCR engine ready")
		return engine, func() {}, nil
	}
}

// newSignalContext returns a context canceled on SIGINT/SIGTERM so an
// interrupted batch stops scheduling new work instead of corrupting output.
func newSignalContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling extraction")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// explainFileError turns file-level extraction errors into actionable
// messages for the caller.
func explainFileError(err error, path string) error {
	switch {
	case errors.Is(err, pdf.ErrNotFound):
		return fmt.Errorf("PDF file not found: %s", path)
	case errors.Is(err, pdf.ErrPermission):
		return fmt.Errorf("permission denied accessing PDF file: %s", path)
	case errors.Is(err, pdf.ErrEncrypted):
		return fmt.Errorf("PDF is encrypted and cannot be processed without a password: %s", path)
	case errors.Is(err, pdf.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file: %s. Please check the file integrity", path)
	case errors.Is(err, pdf.ErrEmptyDocument):
		return fmt.Errorf("PDF has no pages: %s", path)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("extraction was canceled")
	default:
		return err
	}
}
