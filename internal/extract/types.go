package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Method records which extraction path produced a page's text.
type Method string

const (
	// MethodNative means the text came straight from the PDF's text objects.
	MethodNative Method = "native"
	// MethodOCR means the page was rasterized and recognized.
	MethodOCR Method = "ocr"
	// MethodFailed means neither path produced text for the page.
	MethodFailed Method = "failed"
)

// PageResult is the outcome for a single page. Exactly one exists per
// processed page; a failed page still gets a result with the error recorded.
// Method "failed" implies empty Text; method "native" implies the page was
// never rasterized.
type PageResult struct {
	Page       int     `json:"page"`
	Text       string  `json:"text"`
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// DocumentResult aggregates the page results of one document in ascending
// page order. len(Pages) always equals the size of the resolved range,
// however many pages failed.
type DocumentResult struct {
	Path        string        `json:"path"`
	TotalPages  int           `json:"total_pages"`
	FirstPage   int           `json:"first_page"`
	LastPage    int           `json:"last_page"`
	Pages       []PageResult  `json:"pages"`
	NativePages int           `json:"native_pages"`
	OCRPages    int           `json:"ocr_pages"`
	FailedPages int           `json:"failed_pages"`
	Duration    time.Duration `json:"duration"`
}

func (d *DocumentResult) add(p PageResult) {
	d.Pages = append(d.Pages, p)
	switch p.Method {
	case MethodNative:
		d.NativePages++
	case MethodOCR:
		d.OCRPages++
	case MethodFailed:
		d.FailedPages++
	}
}

// Chars returns the total number of extracted characters across all pages.
func (d *DocumentResult) Chars() int {
	n := 0
	for _, p := range d.Pages {
		n += len([]rune(p.Text))
	}
	return n
}

// FileResult is one batch entry: either a document result or the file-level
// error that prevented processing.
type FileResult struct {
	Path   string          `json:"path"`
	Result *DocumentResult `json:"result,omitempty"`
	Err    error           `json:"-"`
}

// Failed reports whether the file could not be processed at all.
func (f FileResult) Failed() bool { return f.Err != nil }

// BatchSummary aggregates one FileResult per input file, in input order.
// A file-level failure never removes other files' results.
type BatchSummary struct {
	Files     []FileResult `json:"files"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// PageRange is a 1-based inclusive page selection. The zero value selects
// all pages.
type PageRange struct {
	First int
	Last  int
}

// IsAll reports whether the range selects the whole document.
func (r PageRange) IsAll() bool { return r.First == 0 && r.Last == 0 }

// Resolve intersects the range with the document's actual page count.
// An out-of-bounds range is clamped, never an error; ok is false when the
// intersection is empty.
func (r PageRange) Resolve(total int) (first, last int, ok bool) {
	if total < 1 {
		return 0, 0, false
	}
	if r.IsAll() {
		return 1, total, true
	}
	first = r.First
	if first < 1 {
		first = 1
	}
	last = r.Last
	if last > total {
		last = total
	}
	if first > last {
		return 0, 0, false
	}
	return first, last, true
}

// ParseRange parses a page range flag: "" selects all pages, "7" a single
// page, "3-12" an inclusive span.
func ParseRange(s string) (PageRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PageRange{}, nil
	}

	parts := strings.SplitN(s, "-", 2)
	first, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || first < 1 {
		return PageRange{}, fmt.Errorf("invalid page range %q: first page must be a positive number", s)
	}
	last := first
	if len(parts) == 2 {
		last, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || last < 1 {
			return PageRange{}, fmt.Errorf("invalid page range %q: last page must be a positive number", s)
		}
	}
	if last < first {
		return PageRange{}, fmt.Errorf("invalid page range %q: last page before first", s)
	}
	return PageRange{First: first, Last: last}, nil
}
