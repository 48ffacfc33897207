// Package output writes extraction results to text files: one blob per
// document with page-boundary markers, or one file per page plus a
// concatenated file. Naming is deterministic by page index so reruns
// overwrite in place.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"odiapdf/internal/extract"
)

// PageMarker returns the boundary line written before each page's text.
func PageMarker(page int) string {
	return fmt.Sprintf("--- Page %d ---", page)
}

// DocumentText renders a document result as a single UTF-8 blob: each page of
// the range appears under its marker, in page order. Failed pages keep their
// marker with an empty body so the blob stays page-addressable.
func DocumentText(res *extract.DocumentResult) string {
	var b strings.Builder
	for i, p := range res.Pages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(PageMarker(p.Page))
		b.WriteString("\n")
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// WriteDocument writes the document blob to path.
func WriteDocument(path string, res *extract.DocumentResult) error {
	if err := os.WriteFile(path, []byte(DocumentText(res)), 0644); err != nil {
		return fmt.Errorf("write document text: %w", err)
	}
	return nil
}

// PageFileName returns the deterministic per-page file name, e.g. page_007.txt.
func PageFileName(prefix string, page int) string {
	return fmt.Sprintf("%s_%03d.txt", prefix, page)
}

// WritePages writes one text file per page into dir plus one concatenated
// <prefix>.txt for the whole document. It returns a map from page number to
// the per-page file path.
func WritePages(dir, prefix string, res *extract.DocumentResult) (map[int]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	files := make(map[int]string, len(res.Pages))
	for _, p := range res.Pages {
		path := filepath.Join(dir, PageFileName(prefix, p.Page))
		if err := os.WriteFile(path, []byte(p.Text), 0644); err != nil {
			return nil, fmt.Errorf("write page %d: %w", p.Page, err)
		}
		files[p.Page] = path
	}

	concat := filepath.Join(dir, prefix+".txt")
	if err := WriteDocument(concat, res); err != nil {
		return nil, err
	}
	return files, nil
}
