package client

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// The service responds with {errorCode, errorMsg, result} where result is
// either a flat recognition result or a paginated one. Both shapes must be
// accepted; parsing is tolerant of extra fields.
type apiResponse struct {
	ErrorCode *int            `json:"errorCode"`
	ErrorMsg  string          `json:"errorMsg"`
	Result    json.RawMessage `json:"result"`
}

type wireResult struct {
	// Flat shape
	OCRResults []fragment `json:"ocrResults"`

	// Paginated shape
	Pages         []resultPage `json:"pages"`
	RenderedPages int          `json:"renderedPages"`
}

type resultPage struct {
	OCRResults []fragment `json:"ocrResults"`
}

type fragment struct {
	PrunedResult string `json:"prunedResult"`
}

// resultKind tags which response shape was received.
type resultKind int

const (
	kindFlat resultKind = iota
	kindPaginated
)

// parsedResult is the tagged union resolved once at parse time.
type parsedResult struct {
	Kind      resultKind
	Text      string
	CharCount int
	PageCount int
}

// resolveResult decodes the result payload and resolves its shape. The
// presence of a pages list selects the paginated shape; everything else is
// treated as flat, including an empty result.
func resolveResult(raw json.RawMessage) (parsedResult, error) {
	var wire wireResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &wire); err != nil {
			return parsedResult{}, err
		}
	}

	if wire.Pages != nil {
		var b strings.Builder
		for _, page := range wire.Pages {
			for _, f := range page.OCRResults {
				b.WriteString(f.PrunedResult)
			}
		}
		text := b.String()
		return parsedResult{
			Kind:      kindPaginated,
			Text:      text,
			CharCount: utf8.RuneCountInString(text),
			PageCount: wire.RenderedPages,
		}, nil
	}

	var b strings.Builder
	for _, f := range wire.OCRResults {
		b.WriteString(f.PrunedResult)
	}
	text := b.String()
	return parsedResult{
		Kind:      kindFlat,
		Text:      text,
		CharCount: utf8.RuneCountInString(text),
	}, nil
}
