package ocr

import (
	"fmt"
	"strings"
)

// visionHints maps Tesseract language codes to the BCP-47 hints the Cloud
// Vision API expects. The table doubles as the set of supported codes.
var visionHints = map[string]string{
	"ori": "or",
	"eng": "en",
	"hin": "hi",
	"ben": "bn",
	"asm": "as",
	"guj": "gu",
	"kan": "kn",
	"mal": "ml",
	"mar": "mr",
	"pan": "pa",
	"san": "sa",
	"tam": "ta",
	"tel": "te",
	"urd": "ur",
}

// ParseLanguages splits a Tesseract-style language string ("ori+eng+hin")
// into its codes, validating each against the supported set. Order is
// preserved; it determines recognition priority.
func ParseLanguages(s string) ([]string, error) {
	const op = "ParseLanguages"

	s = strings.TrimSpace(s)
	if s == "" {
		return nil, NewOCRError(op, ErrUnsupportedLanguage, "empty language string")
	}

	var langs []string
	for _, code := range strings.Split(s, "+") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := visionHints[code]; !ok {
			return nil, NewOCRError(op, ErrUnsupportedLanguage, fmt.Sprintf("unknown code %q", code))
		}
		langs = append(langs, code)
	}
	if len(langs) == 0 {
		return nil, NewOCRError(op, ErrUnsupportedLanguage, "no language codes given")
	}
	return langs, nil
}

// LanguageHints converts Tesseract codes to Vision API language hints,
// dropping codes without a known mapping.
func LanguageHints(langs []string) []string {
	hints := make([]string, 0, len(langs))
	for _, code := range langs {
		if hint, ok := visionHints[code]; ok {
			hints = append(hints, hint)
		}
	}
	return hints
}
