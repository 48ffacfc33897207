// Package extract implements the per-page extraction strategy and the
// document and batch orchestration around it. Each page first goes through
// native text extraction; when the native text is missing or too short the
// page is rasterized, preprocessed, and recognized by an OCR engine. Page
// failures are folded into results, never raised, so one unreadable page or
// file cannot abort a batch.
package extract

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"odiapdf/internal/logger"
	"odiapdf/internal/ocr"
	"odiapdf/internal/pdf"
	"odiapdf/internal/preprocess"
)

// Source provides page-level access to one open PDF document. Implemented by
// pdf.Document; stubbed in tests.
type Source interface {
	PageCount() int
	PageText(page int) (string, error)
	RenderPage(page, dpi int) (image.Image, error)
	Close() error
}

// Options configures the extraction pipeline. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	// Languages are the Tesseract language codes passed to the OCR engine.
	Languages []string

	// DPI is the rasterization resolution for the OCR path.
	DPI int

	// MinNativeChars is the sufficiency threshold: native text with fewer
	// characters after trimming triggers the OCR fallback. Direct extraction
	// can return spurious near-empty strings for scanned pages with stray
	// embedded glyphs, so the bar stays low but above zero.
	MinNativeChars int

	// PageSegMode and EngineMode configure the OCR engine.
	PageSegMode int
	EngineMode  int

	// OCRTimeout bounds a single recognition call. Zero disables the bound.
	OCRTimeout time.Duration

	// Preprocess configures bitmap preprocessing on the OCR path.
	Preprocess preprocess.Config

	// Workers is the number of concurrent file-level workers in batch mode.
	Workers int
}

// DefaultOptions returns the settings used for the Odia document corpus.
func DefaultOptions() Options {
	return Options{
		Languages:      ocr.DefaultLanguages,
		DPI:            300,
		MinNativeChars: 1,
		PageSegMode:    ocr.DefaultPageSegMode,
		EngineMode:     ocr.DefaultEngineMode,
		OCRTimeout:     2 * time.Minute,
		Preprocess:     preprocess.DefaultConfig(),
		Workers:        4,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if len(o.Languages) == 0 {
		o.Languages = def.Languages
	}
	if o.DPI <= 0 {
		o.DPI = def.DPI
	}
	if o.MinNativeChars < 1 {
		o.MinNativeChars = def.MinNativeChars
	}
	if o.Workers < 1 {
		o.Workers = def.Workers
	}
	return o
}

// Engine runs the per-page extraction strategy.
type Engine struct {
	opts Options
	ocr  ocr.Engine
	log  zerolog.Logger

	// open is swapped out in tests to inject stub sources.
	open func(path string) (Source, error)
}

// New creates an extraction engine backed by the given OCR engine.
func New(ocrEngine ocr.Engine, opts Options) *Engine {
	return &Engine{
		opts: opts.withDefaults(),
		ocr:  ocrEngine,
		log:  logger.WithComponent("extract"),
		open: openDocument,
	}
}

func openDocument(path string) (Source, error) {
	return pdf.Open(path)
}

// ExtractPage runs the strategy for a single page and always returns a
// result: native text when sufficient, OCR text on fallback, or a failed
// result carrying the error detail. Errors never escape the page.
func (e *Engine) ExtractPage(ctx context.Context, src Source, page int) PageResult {
	text, err := src.PageText(page)
	if err == nil {
		trimmed := strings.TrimSpace(text)
		if len([]rune(trimmed)) >= e.opts.MinNativeChars {
			e.log.Debug().Int("page", page).Int("chars", len([]rune(trimmed))).Msg("native text extracted")
			return PageResult{Page: page, Text: trimmed, Method: MethodNative}
		}
		e.log.Info().Int("page", page).Msg("native text insufficient, using OCR fallback")
	} else {
		e.log.Warn().Err(err).Int("page", page).Msg("native extraction failed, using OCR fallback")
	}

	return e.ocrPage(ctx, src, page)
}

func (e *Engine) ocrPage(ctx context.Context, src Source, page int) PageResult {
	img, err := src.RenderPage(page, e.opts.DPI)
	if err != nil {
		// No bitmap means no OCR path either.
		e.log.Error().Err(err).Int("page", page).Msg("page render failed")
		return PageResult{Page: page, Method: MethodFailed, Error: err.Error()}
	}

	img = preprocess.Apply(img, e.opts.Preprocess)

	data, err := encodePNG(img)
	if err != nil {
		e.log.Error().Err(err).Int("page", page).Msg("page image encoding failed")
		return PageResult{Page: page, Method: MethodFailed, Error: err.Error()}
	}

	octx := ctx
	if e.opts.OCRTimeout > 0 {
		var cancel context.CancelFunc
		octx, cancel = context.WithTimeout(ctx, e.opts.OCRTimeout)
		defer cancel()
	}

	res, err := e.ocr.Recognize(octx, ocr.Input{
		Image:       data,
		Languages:   e.opts.Languages,
		DPI:         e.opts.DPI,
		PageSegMode: e.opts.PageSegMode,
		EngineMode:  e.opts.EngineMode,
	})
	if err != nil {
		e.log.Error().Err(err).Int("page", page).Str("engine", e.ocr.Name()).Msg("OCR failed")
		return PageResult{Page: page, Method: MethodFailed, Error: err.Error()}
	}

	// OCR output is accepted as-is, even empty: an intentionally blank page
	// is a valid outcome.
	e.log.Debug().Int("page", page).Int("chars", len([]rune(res.Text))).Float64("confidence", res.Confidence).Msg("OCR text extracted")
	return PageResult{Page: page, Text: res.Text, Method: MethodOCR, Confidence: res.Confidence}
}

// ExtractDocument opens a PDF and processes every page of the resolved range
// in ascending order. File-level failures (unreadable, encrypted, empty) are
// returned as errors; page-level failures end up inside the result.
func (e *Engine) ExtractDocument(ctx context.Context, path string, r PageRange) (*DocumentResult, error) {
	start := time.Now()

	src, err := e.open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	total := src.PageCount()
	res := &DocumentResult{Path: path, TotalPages: total}

	first, last, ok := r.Resolve(total)
	if !ok {
		e.log.Warn().Str("file", path).Int("total_pages", total).Msg("page range does not intersect document")
		res.Duration = time.Since(start)
		return res, nil
	}
	res.FirstPage = first
	res.LastPage = last

	e.log.Info().Str("file", path).Int("total_pages", total).Int("first", first).Int("last", last).Msg("extracting document")

	for page := first; page <= last; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.add(e.ExtractPage(ctx, src, page))
	}

	res.Duration = time.Since(start)
	e.log.Info().
		Str("file", path).
		Int("pages", len(res.Pages)).
		Int("native", res.NativePages).
		Int("ocr", res.OCRPages).
		Int("failed", res.FailedPages).
		Int("chars", res.Chars()).
		Dur("duration", res.Duration).
		Msg("document extraction completed")

	return res, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
