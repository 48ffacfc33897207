// Package ocr provides OCR (Optical Character Recognition) engines for
// recognizing text on rendered PDF page images.
//
// Two engines are available:
//   - TesseractEngine (default): local recognition via the Tesseract library.
//     Requires tesseract and the language packs (tesseract-ocr-ori,
//     tesseract-ocr-eng, tesseract-ocr-hin) to be installed.
//   - VisionEngine: remote recognition via the Google Cloud Vision API.
//     Requires GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS.
//
// Engines are synchronous: one image in, one result out. Callers bound the
// call with a context deadline; a deadline hit is reported as ErrTimeout.
package ocr

import "context"

// Default engine configuration, matching Tesseract's fully automatic page
// segmentation and the LSTM-based engine.
const (
	DefaultPageSegMode = 3
	DefaultEngineMode  = 3
)

// DefaultLanguages is the recognition order used for Odia documents with
// embedded English and Hindi passages.
var DefaultLanguages = []string{"ori", "eng", "hin"}

// Input is a single page image submitted for recognition.
type Input struct {
	// Image is the PNG-encoded page bitmap.
	Image []byte

	// Languages are Tesseract language codes in priority order (e.g. ori, eng, hin).
	Languages []string

	// DPI is the resolution the bitmap was rendered at; zero means unknown.
	DPI int

	// PageSegMode selects the Tesseract page segmentation mode.
	PageSegMode int

	// EngineMode selects the Tesseract OCR engine mode.
	EngineMode int
}

// Result carries recognized text for one input image.
type Result struct {
	// Text is the recognized text with surrounding whitespace trimmed.
	// It may be empty: a blank scanned page is a valid outcome.
	Text string

	// Confidence is the mean word confidence in [0,1], or zero when the
	// engine does not report one.
	Confidence float64
}

// Engine is the contract every OCR provider implements.
type Engine interface {
	// Name identifies the engine ("tesseract", "vision").
	Name() string

	// Recognize runs recognition over a single image. The call blocks until
	// recognition finishes or ctx expires.
	Recognize(ctx context.Context, in Input) (Result, error)
}
