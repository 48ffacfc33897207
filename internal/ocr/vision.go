package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionEngine implements Engine using the Google Cloud Vision API. It is the
// remote alternative to the Tesseract engine for hosts without local language
// packs; recognition quality for Odia differs between the two.
type VisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionEngine creates a Vision-backed engine with credentials from the
// environment: GOOGLE_CREDENTIALS inline JSON, GOOGLE_APPLICATION_CREDENTIALS
// file path, or Application Default Credentials, in that order.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, NewOCRError(op, ErrEngineUnavailable, fmt.Sprintf("create client with GOOGLE_CREDENTIALS: %v", err))
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, NewOCRError(op, ErrEngineUnavailable, fmt.Sprintf("create client with GOOGLE_APPLICATION_CREDENTIALS: %v", err))
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, NewOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionEngine{client: client}, nil
}

// NewVisionEngineWithClient creates a Vision engine with an explicit client (for testing).
func NewVisionEngineWithClient(client *vision.ImageAnnotatorClient) *VisionEngine {
	return &VisionEngine{client: client}
}

func (v *VisionEngine) Name() string { return "vision" }

// Recognize submits the page image for document text detection. Language
// hints are derived from the Tesseract codes; codes Vision does not know are
// dropped rather than rejected.
func (v *VisionEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	const op = "Recognize"

	if len(in.Image) == 0 {
		return Result{}, NewOCRError(op, ErrEmptyImage, "")
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: in.Image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: LanguageHints(in.Languages),
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, NewOCRError(op, ErrTimeout, fmt.Sprintf("Vision API call: %v", err))
		}
		return Result{}, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return Result{}, NewOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return Result{}, NewOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", annotated.Error.Message))
	}

	// A page with no detectable text yields a nil annotation; that is a
	// legitimate blank-page result, not a failure.
	fta := annotated.FullTextAnnotation
	if fta == nil {
		return Result{}, nil
	}

	var confidenceSum float64
	var confidenceCount int
	for _, page := range fta.Pages {
		if page.Confidence > 0 {
			confidenceSum += float64(page.Confidence)
			confidenceCount++
		}
	}
	var confidence float64
	if confidenceCount > 0 {
		confidence = confidenceSum / float64(confidenceCount)
	}

	return Result{
		Text:       strings.TrimSpace(fta.Text),
		Confidence: confidence,
	}, nil
}

// Close closes the underlying Vision client.
func (v *VisionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
