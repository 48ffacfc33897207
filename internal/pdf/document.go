// Package pdf adapts MuPDF (via go-fitz) for native text extraction and page
// rasterization, with a pdfcpu-based structural check at open time so broken
// or encrypted files fail fast instead of failing page by page.
package pdf

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is an open PDF file. It is not safe for concurrent use; each
// batch worker opens its own Document.
type Document struct {
	path string
	doc  *fitz.Document
}

// Open validates and opens a PDF file. Failures are classified into the
// package's sentinel errors so callers can distinguish a missing file from a
// corrupted or encrypted one.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open %s: %w", path, ErrNotFound)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("open %s: %w", path, ErrPermission)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := validate(f); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, ErrInvalidPDF, err)
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, fmt.Errorf("open %s: %w", path, ErrEmptyDocument)
	}

	return &Document{path: path, doc: doc}, nil
}

// validate runs pdfcpu's read-and-validate pass over the file, mapping its
// failures onto the sentinel errors.
func validate(f *os.File) error {
	header := make([]byte, 4)
	if n, _ := f.Read(header); n < 4 || string(header) != "%PDF" {
		return fmt.Errorf("%w: missing PDF header", ErrInvalidPDF)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}

	conf := model.NewDefaultConfiguration()
	if _, err := api.ReadValidateAndOptimize(f, conf); err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
			return fmt.Errorf("%w: %v", ErrEncrypted, err)
		}
		return fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return nil
}

// Path returns the filesystem path the document was opened from.
func (d *Document) Path() string { return d.path }

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.doc.NumPage() }

// PageText extracts the native text objects of a page (1-based). An error
// here is a page-level parse failure; the caller decides whether to fall back
// to OCR. Sufficiency of the returned text is not judged here.
func (d *Document) PageText(page int) (string, error) {
	if page < 1 || page > d.doc.NumPage() {
		return "", fmt.Errorf("page %d of %s: %w", page, d.path, ErrPageOutOfRange)
	}
	text, err := d.doc.Text(page - 1)
	if err != nil {
		return "", fmt.Errorf("extract text from page %d of %s: %w", page, d.path, err)
	}
	return text, nil
}

// RenderPage rasterizes a page (1-based) to a bitmap at the given resolution.
// Same page and DPI always produce the same bitmap dimensions.
func (d *Document) RenderPage(page, dpi int) (image.Image, error) {
	if page < 1 || page > d.doc.NumPage() {
		return nil, fmt.Errorf("page %d of %s: %w", page, d.path, ErrPageOutOfRange)
	}
	img, err := d.doc.ImageDPI(page-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d of %s at %d dpi: %w", page, d.path, dpi, err)
	}
	return img, nil
}

// Close releases the underlying MuPDF document.
func (d *Document) Close() error {
	return d.doc.Close()
}
