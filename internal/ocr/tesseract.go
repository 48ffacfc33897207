package ocr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine using the gosseract client. A fresh
// client is created per call; gosseract clients are not safe for concurrent
// reuse and carry per-image state.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs the default, locally running OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Check verifies that the Tesseract library is installed and that the
// requested language packs are loadable. Called once at startup so a missing
// installation aborts the run instead of failing every page.
func (e *TesseractEngine) Check(langs []string) error {
	const op = "Check"

	c := e.clientFactory()
	defer c.Close()

	if v := c.Version(); v == "" {
		return NewOCRError(op, ErrEngineUnavailable, "tesseract library not found")
	}
	if len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return NewOCRError(op, ErrUnsupportedLanguage, fmt.Sprintf("language packs %s: %v", strings.Join(langs, "+"), err))
		}
	}
	return nil
}

// Recognize runs Tesseract over the input image. The underlying C call is
// blocking and cannot be interrupted, so it runs on its own goroutine and the
// call returns ErrTimeout when ctx expires first; the abandoned recognition
// finishes in the background and its result is discarded.
func (e *TesseractEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	const op = "Recognize"

	if len(in.Image) == 0 {
		return Result{}, NewOCRError(op, ErrEmptyImage, "")
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.recognize(in)
		done <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, NewOCRError(op, ErrTimeout, "recognition deadline exceeded")
		}
		return Result{}, NewOCRError(op, ctx.Err(), "recognition canceled")
	case out := <-done:
		return out.res, out.err
	}
}

func (e *TesseractEngine) recognize(in Input) (Result, error) {
	const op = "recognize"

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return Result{}, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("set image: %v", err))
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return Result{}, NewOCRError(op, ErrUnsupportedLanguage, fmt.Sprintf("set languages: %v", err))
		}
	}
	if in.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(in.PageSegMode)); err != nil {
			return Result{}, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("set page segmentation mode: %v", err))
		}
	}
	if in.EngineMode > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("tessedit_ocr_engine_mode"), strconv.Itoa(in.EngineMode)); err != nil {
			return Result{}, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("set engine mode: %v", err))
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(in.DPI)); err != nil {
			return Result{}, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("set dpi: %v", err))
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("recognize text: %v", err))
	}

	return Result{
		Text:       strings.TrimSpace(text),
		Confidence: meanWordConfidence(c),
	}, nil
}

// meanWordConfidence averages per-word confidences reported by Tesseract,
// scaled to [0,1]. Zero when the engine reports no words.
func meanWordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
