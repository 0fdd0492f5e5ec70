package adapter

import (
	"context"
	"time"

	"github.com/medatlas/provider-cli/internal/model"
	"github.com/medatlas/provider-cli/internal/ocr"
)

// DocumentAdapter pulls provider details out of a credential document.
// It is an Enricher: extracted values carry no confidence and may only
// fill gaps.
type DocumentAdapter struct {
	extractor ocr.Extractor
	timeout   time.Duration
}

// NewDocumentAdapter creates a document extraction enricher.
func NewDocumentAdapter(extractor ocr.Extractor, timeout time.Duration) *DocumentAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DocumentAdapter{extractor: extractor, timeout: timeout}
}

func (a *DocumentAdapter) Name() string { return "document" }

// Fields extracts text from the record's attached document and parses
// provider details from it. Records without a document yield nothing.
func (a *DocumentAdapter) Fields(ctx context.Context, rec *model.ProviderRecord) (map[string]string, error) {
	if rec.DocumentPath == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.extractor.ExtractText(ctx, rec.DocumentPath)
	if err != nil {
		return nil, err
	}

	parsed := ocr.ParseProviderData(text)
	fields := make(map[string]string, len(parsed))
	for key, value := range parsed {
		// The document parser reports a single address line.
		if key == "address" {
			key = model.FieldAddressLine1
		}
		if key == model.FieldLicenseNumber {
			value = NormalizeLicense(value)
		}
		fields[key] = value
	}
	return fields, nil
}
