package pdf

import "errors"

// File-level errors. Any of these is fatal for the file: per-page processing
// is short-circuited and the batch moves on to the next file.
var (
	// ErrNotFound is returned when the PDF file does not exist.
	ErrNotFound = errors.New("PDF file not found")

	// ErrPermission is returned when the PDF file cannot be read due to
	// filesystem permissions.
	ErrPermission = errors.New("permission denied accessing PDF file")

	// ErrEncrypted is returned when the PDF is password protected and no
	// password was supplied.
	ErrEncrypted = errors.New("PDF is encrypted")

	// ErrInvalidPDF is returned when the file is not a structurally valid PDF.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrEmptyDocument is returned when the PDF contains zero pages.
	ErrEmptyDocument = errors.New("PDF document has no pages")

	// ErrPageOutOfRange is returned for a page index outside [1, PageCount].
	ErrPageOutOfRange = errors.New("page index out of range")
)
