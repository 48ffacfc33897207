package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"reflect"
	"strings"
	"testing"
	"time"

	"odiapdf/internal/ocr"
	"odiapdf/internal/preprocess"
)

type stubPage struct {
	text      string
	textErr   error
	renderErr error
}

// stubSource fakes an open document and records which pages were rasterized.
type stubSource struct {
	count   int
	pages   map[int]stubPage
	renders []int
	closed  bool
}

func (s *stubSource) PageCount() int { return s.count }

func (s *stubSource) PageText(page int) (string, error) {
	p := s.pages[page]
	return p.text, p.textErr
}

func (s *stubSource) RenderPage(page, dpi int) (image.Image, error) {
	p := s.pages[page]
	if p.renderErr != nil {
		return nil, p.renderErr
	}
	s.renders = append(s.renders, page)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	return img, nil
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

// spyEngine records every recognition call and returns canned results.
type spyEngine struct {
	calls []ocr.Input
	text  string
	err   error
	block bool
}

func (s *spyEngine) Name() string { return "spy" }

func (s *spyEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if s.block {
		<-ctx.Done()
		return ocr.Result{}, ocr.NewOCRError("Recognize", ocr.ErrTimeout, "engine never returned")
	}
	s.calls = append(s.calls, in)
	if s.err != nil {
		return ocr.Result{}, s.err
	}
	return ocr.Result{Text: s.text, Confidence: 0.9}, nil
}

func newTestEngine(spy *spyEngine, src *stubSource, opts Options) *Engine {
	e := New(spy, opts)
	e.open = func(string) (Source, error) { return src, nil }
	return e
}

func TestNativeSufficientSkipsOCR(t *testing.T) {
	src := &stubSource{count: 1, pages: map[int]stubPage{
		1: {text: "ଅନୁଭୂତ ଯୋଗମାଳା ପ୍ରଥମ ଭାଗ"},
	}}
	spy := &spyEngine{text: "should not be used"}
	e := newTestEngine(spy, src, DefaultOptions())

	res := e.ExtractPage(context.Background(), src, 1)

	if res.Method != MethodNative {
		t.Fatalf("method = %q, want %q", res.Method, MethodNative)
	}
	if res.Text != "ଅନୁଭୂତ ଯୋଗମାଳା ପ୍ରଥମ ଭାଗ" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if len(spy.calls) != 0 {
		t.Fatalf("OCR was invoked %d times, want 0", len(spy.calls))
	}
	if len(src.renders) != 0 {
		t.Fatalf("page was rasterized %d times, want 0", len(src.renders))
	}
}

func TestEmptyNativeRunsRasterPreprocessOCROnce(t *testing.T) {
	src := &stubSource{count: 1, pages: map[int]stubPage{
		1: {text: "   \n\t "},
	}}
	spy := &spyEngine{text: "recognized text"}
	e := newTestEngine(spy, src, DefaultOptions())

	res := e.ExtractPage(context.Background(), src, 1)

	if res.Method != MethodOCR {
		t.Fatalf("method = %q, want %q", res.Method, MethodOCR)
	}
	if res.Text != "recognized text" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if got := src.renders; !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("renders = %v, want exactly one render of page 1", got)
	}
	if len(spy.calls) != 1 {
		t.Fatalf("OCR invoked %d times, want 1", len(spy.calls))
	}

	// The engine must receive the preprocessed (grayscale) bitmap.
	img, err := png.Decode(bytes.NewReader(spy.calls[0].Image))
	if err != nil {
		t.Fatalf("OCR input is not a valid PNG: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Fatalf("OCR input image is %T, want grayscale", img)
	}
}

func TestPreprocessingDisabledPassesOriginalImage(t *testing.T) {
	src := &stubSource{count: 1, pages: map[int]stubPage{1: {}}}
	spy := &spyEngine{text: "x"}
	opts := DefaultOptions()
	opts.Preprocess = preprocess.Config{Enabled: false}
	e := newTestEngine(spy, src, opts)

	e.ExtractPage(context.Background(), src, 1)

	if len(spy.calls) != 1 {
		t.Fatalf("OCR invoked %d times, want 1", len(spy.calls))
	}
	img, err := png.Decode(bytes.NewReader(spy.calls[0].Image))
	if err != nil {
		t.Fatalf("OCR input is not a valid PNG: %v", err)
	}
	if _, ok := img.(*image.Gray); ok {
		t.Fatalf("image was converted to grayscale although preprocessing is disabled")
	}
}

func TestParseErrorFallsBackToOCR(t *testing.T) {
	src := &stubSource{count: 1, pages: map[int]stubPage{
		1: {textErr: errors.New("damaged content stream")},
	}}
	spy := &spyEngine{text: "ocr output"}
	e := newTestEngine(spy, src, DefaultOptions())

	res := e.ExtractPage(context.Background(), src, 1)

	if res.Method != MethodOCR {
		t.Fatalf("method = %q, want %q", res.Method, MethodOCR)
	}
	if len(spy.calls) != 1 {
		t.Fatalf("OCR invoked %d times, want 1", len(spy.calls))
	}
}

func TestRenderErrorFailsPage(t *testing.T) {
	src := &stubSource{count: 1, pages: map[int]stubPage{
		1: {text: "", renderErr: errors.New("unsupported page object")},
	}}
	spy := &spyEngine{}
	e := newTestEngine(spy, src, DefaultOptions())

	res := e.ExtractPage(context.Background(), src, 1)

	if res.Method != MethodFailed {
		t.Fatalf("method = %q, want %q", res.Method, MethodFailed)
	}
	if res.Text != "" {
		t.Fatalf("failed page carries text: %q", res.Text)
	}
	if res.Error == "" {
		t.Fatal("failed page has no error detail")
	}
	if len(spy.calls) != 0 {
		t.Fatalf("OCR invoked without a bitmap, %d calls", len(spy.calls))
	}
}

func TestOCRErrorFailsPage(t *testing.T) {
	src := &stubSource{count: 1, pages: map[int]stubPage{1: {}}}
	spy := &spyEngine{err: ocr.NewOCRError("Recognize", ocr.ErrOCRFailed, "engine crashed")}
	e := newTestEngine(spy, src, DefaultOptions())

	res := e.ExtractPage(context.Background(), src, 1)

	if res.Method != MethodFailed {
		t.Fatalf("method = %q, want %q", res.Method, MethodFailed)
	}
	if res.Error == "" {
		t.Fatal("failed page has no error detail")
	}
}

func TestEmptyOCRTextIsAccepted(t *testing.T) {
	// A blank scanned page is a valid outcome; no sufficiency re-check
	// applies to OCR output.
	src := &stubSource{count: 1, pages: map[int]stubPage{1: {}}}
	spy := &spyEngine{text: ""}
	e := newTestEngine(spy, src, DefaultOptions())

	res := e.ExtractPage(context.Background(), src, 1)

	if res.Method != MethodOCR {
		t.Fatalf("method = %q, want %q", res.Method, MethodOCR)
	}
	if res.Error != "" {
		t.Fatalf("unexpected error detail: %q", res.Error)
	}
}

func TestMinNativeCharsThreshold(t *testing.T) {
	tests := []struct {
		name     string
		minChars int
		text     string
		want     Method
	}{
		{"short text below raised threshold", 10, "ab", MethodOCR},
		{"text meeting raised threshold", 10, "ten chars!", MethodNative},
		{"single char meets default", 1, "x", MethodNative},
		{"whitespace only never suffices", 1, " \n ", MethodOCR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{count: 1, pages: map[int]stubPage{1: {text: tt.text}}}
			spy := &spyEngine{text: "fallback"}
			opts := DefaultOptions()
			opts.MinNativeChars = tt.minChars
			e := newTestEngine(spy, src, opts)

			res := e.ExtractPage(context.Background(), src, 1)
			if res.Method != tt.want {
				t.Fatalf("method = %q, want %q", res.Method, tt.want)
			}
		})
	}
}

func TestDocumentResultCoversEveryPageInOrder(t *testing.T) {
	src := &stubSource{count: 5, pages: map[int]stubPage{
		1: {text: "native one"},
		2: {},
		3: {text: "native three"},
		4: {renderErr: errors.New("render blew up")},
		5: {},
	}}
	spy := &spyEngine{text: "ocr text"}
	e := newTestEngine(spy, src, DefaultOptions())

	res, err := e.ExtractDocument(context.Background(), "book.pdf", PageRange{})
	if err != nil {
		t.Fatalf("ExtractDocument() error = %v", err)
	}

	if len(res.Pages) != 5 {
		t.Fatalf("got %d page results, want 5", len(res.Pages))
	}
	for i, p := range res.Pages {
		if p.Page != i+1 {
			t.Fatalf("page at index %d is %d, want ascending order", i, p.Page)
		}
	}
	if res.NativePages != 2 || res.OCRPages != 2 || res.FailedPages != 1 {
		t.Fatalf("counts native/ocr/failed = %d/%d/%d, want 2/2/1",
			res.NativePages, res.OCRPages, res.FailedPages)
	}
	if !src.closed {
		t.Fatal("document was not closed")
	}
}

func TestRangeClampedToPageCount(t *testing.T) {
	src := &stubSource{count: 5, pages: map[int]stubPage{
		1: {text: "a"}, 2: {text: "b"}, 3: {text: "c"}, 4: {text: "d"}, 5: {text: "e"},
	}}
	e := newTestEngine(&spyEngine{}, src, DefaultOptions())

	res, err := e.ExtractDocument(context.Background(), "book.pdf", PageRange{First: 1, Last: 1000})
	if err != nil {
		t.Fatalf("ExtractDocument() error = %v", err)
	}
	if len(res.Pages) != 5 {
		t.Fatalf("got %d page results, want exactly 5", len(res.Pages))
	}
	if res.FirstPage != 1 || res.LastPage != 5 {
		t.Fatalf("resolved range %d-%d, want 1-5", res.FirstPage, res.LastPage)
	}
}

func TestRangeOutsideDocumentYieldsNoPages(t *testing.T) {
	src := &stubSource{count: 5, pages: map[int]stubPage{}}
	e := newTestEngine(&spyEngine{}, src, DefaultOptions())

	res, err := e.ExtractDocument(context.Background(), "book.pdf", PageRange{First: 10, Last: 20})
	if err != nil {
		t.Fatalf("ExtractDocument() error = %v", err)
	}
	if len(res.Pages) != 0 {
		t.Fatalf("got %d page results, want 0", len(res.Pages))
	}
}

func TestExtractionIsIdempotent(t *testing.T) {
	newSrc := func() *stubSource {
		return &stubSource{count: 3, pages: map[int]stubPage{
			1: {text: "native"},
			2: {},
			3: {renderErr: errors.New("render failed")},
		}}
	}
	run := func() []PageResult {
		src := newSrc()
		e := newTestEngine(&spyEngine{text: "deterministic ocr"}, src, DefaultOptions())
		res, err := e.ExtractDocument(context.Background(), "book.pdf", PageRange{})
		if err != nil {
			t.Fatalf("ExtractDocument() error = %v", err)
		}
		return res.Pages
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between runs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestOCRTimeoutFailsPageWithoutHanging(t *testing.T) {
	src := &stubSource{count: 1, pages: map[int]stubPage{1: {}}}
	spy := &spyEngine{block: true}
	opts := DefaultOptions()
	opts.OCRTimeout = 30 * time.Millisecond
	e := newTestEngine(spy, src, opts)

	start := time.Now()
	res := e.ExtractPage(context.Background(), src, 1)
	elapsed := time.Since(start)

	if res.Method != MethodFailed {
		t.Fatalf("method = %q, want %q", res.Method, MethodFailed)
	}
	if !strings.Contains(res.Error, "timed out") {
		t.Fatalf("error detail %q does not mention the timeout", res.Error)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("page took %v, timeout did not bound the call", elapsed)
	}
}

func TestFileOpenErrorIsReturned(t *testing.T) {
	e := New(&spyEngine{}, DefaultOptions())
	wantErr := fmt.Errorf("open broken.pdf: %w", errors.New("boom"))
	e.open = func(string) (Source, error) { return nil, wantErr }

	_, err := e.ExtractDocument(context.Background(), "broken.pdf", PageRange{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("ExtractDocument() error = %v, want the open error", err)
	}
}
