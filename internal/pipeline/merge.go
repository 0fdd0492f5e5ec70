package pipeline

import (
	"go.uber.org/zap"

	"github.com/medatlas/provider-cli/internal/model"
)

// autoCorrectThreshold is the validation confidence required before a
// validated value may overwrite a non-empty original field.
const autoCorrectThreshold = 80

// DirectoryMerger folds validated and enriched values into the original
// record. Low-confidence data may only fill gaps, never replace existing
// values; that rule is what keeps a bad signal source from corrupting
// the directory.
type DirectoryMerger struct{}

// NewDirectoryMerger creates a merger.
func NewDirectoryMerger() *DirectoryMerger {
	return &DirectoryMerger{}
}

// Merge produces the final record. Any panic during merging falls back
// to the original record untouched; the directory must never lose a
// provider because reconciliation crashed.
func (m *DirectoryMerger) Merge(rec *model.ProviderRecord, validated *model.ValidationOutcome, enriched *model.EnrichmentOutcome, qa *model.QAResult) (final *model.FinalRecord) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("merge: recovered from panic, keeping original record",
				zap.String("provider_id", rec.ID),
				zap.Any("panic", r),
			)
			fallback := rec.Clone()
			fallback.ConfidenceScore = 0
			fallback.RiskScore = 0
			fallback.ValidationStatus = string(model.StatusPending)
			final = &model.FinalRecord{ProviderRecord: fallback}
		}
	}()

	merged := rec.Clone()
	mergedFrom := make(map[string]string)

	// Auto-correction pass: a validated value at or above the threshold
	// overwrites the original, but only for correctable fields.
	for _, field := range model.CorrectableFields {
		validatedValue := validated.Value(field)
		if validatedValue != "" && validated.Confidence(field) >= autoCorrectThreshold {
			merged.SetField(field, validatedValue)
			mergedFrom[field] = "validated"
		}
	}

	// Full-merge pass: anything still empty is filled from validated
	// first, then enriched. A non-empty field that survived
	// auto-correction stands as the original value, whatever the
	// remaining signals say.
	for _, field := range model.DataFields {
		if model.IsSystemField(field) || mergedFrom[field] != "" {
			continue
		}
		if merged.Field(field) != "" {
			mergedFrom[field] = "original"
			continue
		}
		if v := validated.Value(field); v != "" {
			merged.SetField(field, v)
			mergedFrom[field] = "validated"
		} else if v := enriched.Value(field); v != "" {
			merged.SetField(field, v)
			mergedFrom[field] = "enriched"
		}
	}

	if qa != nil {
		merged.ConfidenceScore = qa.ConfidenceScore
		merged.RiskScore = qa.RiskScore
		merged.ValidationStatus = string(qa.Status)
	} else {
		merged.ConfidenceScore = 0
		merged.RiskScore = 0
		merged.ValidationStatus = string(model.StatusPending)
	}

	return &model.FinalRecord{ProviderRecord: merged, MergedFrom: mergedFrom}
}
