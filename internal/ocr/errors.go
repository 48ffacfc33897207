package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrEngineUnavailable is returned when the OCR engine cannot be reached,
	// e.g. the Tesseract library is not installed or the Vision client cannot
	// be constructed.
	ErrEngineUnavailable = errors.New("OCR engine is not available")

	// ErrUnsupportedLanguage is returned when a language code has no installed
	// language pack or no known Vision hint mapping.
	ErrUnsupportedLanguage = errors.New("unsupported OCR language code")

	// ErrTimeout is returned when recognition did not finish within the
	// configured deadline.
	ErrTimeout = errors.New("OCR processing timed out")

	// ErrOCRFailed is returned when the engine accepted the image but failed
	// to recognize it.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrEmptyImage is returned when no image data was supplied.
	ErrEmptyImage = errors.New("no image data to recognize")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured for the
	// Vision engine.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")
)

// OCRError wraps errors with additional context about the OCR processing failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Recognize", "ParseLanguages").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewOCRError(op, err, details)
}
