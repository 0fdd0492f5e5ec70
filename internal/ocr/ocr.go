// Package ocr extracts provider details from credential documents.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"
)

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor for the named provider.
func NewExtractor(provider, binPath string) (Extractor, error) {
	switch provider {
	case "local", "":
		return NewPdfToText(binPath), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", provider)
	}
}
