package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/medatlas/provider-cli/internal/model"
)

func TestEnrich_FillsOnlyEmptyFields(t *testing.T) {
	stage := NewEnrichmentStage(&fakeEnricher{name: "document", fields: map[string]string{
		model.FieldEmail:         "doc@example.com",
		model.FieldPhone:         "555-999-0000",
		model.FieldLicenseNumber: "MD-1",
	}})

	rec := &model.ProviderRecord{ID: "p1", Phone: "(555) 123-4567"}
	validated := model.NewValidationOutcome()
	validated.Absorb(model.FieldSignal{Field: model.FieldEmail, Value: "validated@example.com", Confidence: 80})

	outcome := stage.Enrich(context.Background(), rec, validated)

	// Phone is set on the record, email is set by validation; only the
	// license number is a genuine gap.
	assert.Equal(t, "", outcome.Value(model.FieldPhone))
	assert.Equal(t, "", outcome.Value(model.FieldEmail))
	assert.Equal(t, "MD-1", outcome.Value(model.FieldLicenseNumber))
}

func TestEnrich_SourceErrorYieldsNothingFromThatSource(t *testing.T) {
	stage := NewEnrichmentStage(
		&fakeEnricher{name: "document", err: eris.New("pdftotext failed")},
		&fakeEnricher{name: "directory", fields: map[string]string{model.FieldEmail: "dir@example.com"}},
	)

	outcome := stage.Enrich(context.Background(), &model.ProviderRecord{}, model.NewValidationOutcome())
	assert.Equal(t, "dir@example.com", outcome.Value(model.FieldEmail))
	assert.Len(t, outcome.Values, 1)
}

func TestEnrich_SkipsSystemFields(t *testing.T) {
	stage := NewEnrichmentStage(&fakeEnricher{name: "document", fields: map[string]string{
		"confidence_score": "99",
		model.FieldEmail:   "doc@example.com",
	}})

	outcome := stage.Enrich(context.Background(), &model.ProviderRecord{}, model.NewValidationOutcome())
	assert.Len(t, outcome.Values, 1)
	assert.Equal(t, "doc@example.com", outcome.Value(model.FieldEmail))
}

func TestEnrich_FillIsIdempotent(t *testing.T) {
	stage := NewEnrichmentStage(&fakeEnricher{name: "document", fields: map[string]string{
		model.FieldEmail: "doc@example.com",
		model.FieldPhone: "555-999-0000",
	}})

	rec := &model.ProviderRecord{Phone: "(555) 123-4567"}
	validated := model.NewValidationOutcome()

	once := stage.Enrich(context.Background(), rec, validated)
	twice := stage.Enrich(context.Background(), rec, validated)
	assert.Equal(t, once.Values, twice.Values)
}

func TestEnrich_FirstSourceWinsGap(t *testing.T) {
	stage := NewEnrichmentStage(
		&fakeEnricher{name: "document", fields: map[string]string{model.FieldEmail: "first@example.com"}},
		&fakeEnricher{name: "directory", fields: map[string]string{model.FieldEmail: "second@example.com"}},
	)

	outcome := stage.Enrich(context.Background(), &model.ProviderRecord{}, model.NewValidationOutcome())
	assert.Equal(t, "first@example.com", outcome.Value(model.FieldEmail))
}
