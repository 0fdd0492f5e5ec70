package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medatlas/provider-cli/internal/model"
)

func TestMerge_AutoCorrectsAtThreshold(t *testing.T) {
	m := NewDirectoryMerger()
	rec := &model.ProviderRecord{ID: "p1", Phone: "555-000-0000"}
	validated := validatedWith(model.FieldSignal{
		Field: model.FieldPhone, Value: "(555) 111-2222", Confidence: 85, Source: model.SourcePhone,
	})

	final := m.Merge(rec, validated, model.NewEnrichmentOutcome(), &model.QAResult{Status: model.StatusValidated})
	assert.Equal(t, "(555) 111-2222", final.Phone)
	assert.Equal(t, "validated", final.MergedFrom[model.FieldPhone])
}

func TestMerge_LowConfidenceNeverOverwrites(t *testing.T) {
	m := NewDirectoryMerger()
	rec := &model.ProviderRecord{Phone: "555-000-0000"}
	validated := validatedWith(model.FieldSignal{
		Field: model.FieldPhone, Value: "(555) 111-2222", Confidence: 79, Source: model.SourcePhone,
	})

	final := m.Merge(rec, validated, model.NewEnrichmentOutcome(), &model.QAResult{})
	assert.Equal(t, "555-000-0000", final.Phone)
	assert.Equal(t, "original", final.MergedFrom[model.FieldPhone])
}

func TestMerge_LowConfidenceFillsGaps(t *testing.T) {
	m := NewDirectoryMerger()
	rec := &model.ProviderRecord{}
	validated := validatedWith(model.FieldSignal{
		Field: model.FieldPhone, Value: "(555) 111-2222", Confidence: 60, Source: model.SourcePhone,
	})

	final := m.Merge(rec, validated, model.NewEnrichmentOutcome(), &model.QAResult{})
	assert.Equal(t, "(555) 111-2222", final.Phone)
	assert.Equal(t, "validated", final.MergedFrom[model.FieldPhone])
}

func TestMerge_EnrichedFillsRemainingGaps(t *testing.T) {
	m := NewDirectoryMerger()
	rec := &model.ProviderRecord{FirstName: "Jane"}
	enriched := model.NewEnrichmentOutcome()
	enriched.Fill(model.FieldEmail, "doc@example.com", model.SourceDocument)
	enriched.Fill(model.FieldFirstName, "Janet", model.SourceDocument)

	final := m.Merge(rec, model.NewValidationOutcome(), enriched, &model.QAResult{})
	assert.Equal(t, "doc@example.com", final.Email)
	assert.Equal(t, "enriched", final.MergedFrom[model.FieldEmail])
	// Enrichment never replaces a non-empty field.
	assert.Equal(t, "Jane", final.FirstName)
	assert.Equal(t, "original", final.MergedFrom[model.FieldFirstName])
}

func TestMerge_ValidatedBeatsEnrichedForGaps(t *testing.T) {
	m := NewDirectoryMerger()
	rec := &model.ProviderRecord{}
	validated := validatedWith(model.FieldSignal{
		Field: model.FieldEmail, Value: "validated@example.com", Confidence: 40,
	})
	enriched := model.NewEnrichmentOutcome()
	enriched.Fill(model.FieldEmail, "enriched@example.com", model.SourceDocument)

	final := m.Merge(rec, validated, enriched, &model.QAResult{})
	assert.Equal(t, "validated@example.com", final.Email)
}

func TestMerge_EveryFieldFromExactlyOneSource(t *testing.T) {
	m := NewDirectoryMerger()
	rec := &model.ProviderRecord{Phone: "555-000-0000", FirstName: "Jane"}
	validated := validatedWith(
		model.FieldSignal{Field: model.FieldPhone, Value: "(555) 111-2222", Confidence: 90},
		model.FieldSignal{Field: model.FieldCity, Value: "Boston", Confidence: 50},
	)
	enriched := model.NewEnrichmentOutcome()
	enriched.Fill(model.FieldEmail, "doc@example.com", model.SourceDocument)

	final := m.Merge(rec, validated, enriched, &model.QAResult{})
	for field, source := range final.MergedFrom {
		assert.Contains(t, []string{"validated", "enriched", "original"}, source, field)
	}
	assert.Equal(t, "validated", final.MergedFrom[model.FieldPhone])
	assert.Equal(t, "validated", final.MergedFrom[model.FieldCity])
	assert.Equal(t, "enriched", final.MergedFrom[model.FieldEmail])
	assert.Equal(t, "original", final.MergedFrom[model.FieldFirstName])
}

func TestMerge_AttachesQAMetadata(t *testing.T) {
	m := NewDirectoryMerger()
	qa := &model.QAResult{ConfidenceScore: 85, RiskScore: 15, Status: model.StatusValidated}

	final := m.Merge(&model.ProviderRecord{}, model.NewValidationOutcome(), model.NewEnrichmentOutcome(), qa)
	assert.Equal(t, 85, final.ConfidenceScore)
	assert.Equal(t, 15, final.RiskScore)
	assert.Equal(t, string(model.StatusValidated), final.ValidationStatus)
}

func TestMerge_NilQADefaults(t *testing.T) {
	m := NewDirectoryMerger()
	final := m.Merge(&model.ProviderRecord{}, model.NewValidationOutcome(), model.NewEnrichmentOutcome(), nil)
	assert.Equal(t, 0, final.ConfidenceScore)
	assert.Equal(t, 0, final.RiskScore)
	assert.Equal(t, string(model.StatusPending), final.ValidationStatus)
}

func TestMerge_NilOutcomesFallBackToOriginal(t *testing.T) {
	m := NewDirectoryMerger()
	rec := &model.ProviderRecord{ID: "p1", FirstName: "Jane", Phone: "555-000-0000"}

	final := m.Merge(rec, nil, nil, nil)
	require.NotNil(t, final)
	assert.Equal(t, "Jane", final.FirstName)
	assert.Equal(t, "555-000-0000", final.Phone)
}

func TestMerge_DoesNotMutateOriginal(t *testing.T) {
	m := NewDirectoryMerger()
	rec := &model.ProviderRecord{Phone: "555-000-0000"}
	validated := validatedWith(model.FieldSignal{
		Field: model.FieldPhone, Value: "(555) 111-2222", Confidence: 95,
	})

	_ = m.Merge(rec, validated, model.NewEnrichmentOutcome(), &model.QAResult{})
	assert.Equal(t, "555-000-0000", rec.Phone)
}
