package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/medatlas/provider-cli/internal/adapter"
	"github.com/medatlas/provider-cli/internal/model"
)

// EnrichmentStage runs supplementary sources whose values fill gaps left
// by validation. Fill-only is enforced here: a field the record or the
// validation outcome already covers is never emitted.
type EnrichmentStage struct {
	enrichers []adapter.Enricher
}

// NewEnrichmentStage creates an enrichment stage over the given sources.
func NewEnrichmentStage(enrichers ...adapter.Enricher) *EnrichmentStage {
	return &EnrichmentStage{enrichers: enrichers}
}

// Enrich collects fill-only values for fields that are empty in both the
// record and the validation outcome. Enrichment never fails; a source
// error is logged and the source contributes nothing.
func (s *EnrichmentStage) Enrich(ctx context.Context, rec *model.ProviderRecord, validated *model.ValidationOutcome) *model.EnrichmentOutcome {
	log := zap.L().With(zap.String("provider_id", rec.ID))

	outcome := model.NewEnrichmentOutcome()
	for _, e := range s.enrichers {
		fields, err := e.Fields(ctx, rec)
		if err != nil {
			log.Warn("enrichment: source failed",
				zap.String("source", e.Name()),
				zap.Error(err),
			)
			continue
		}
		for field, value := range fields {
			if model.IsSystemField(field) {
				continue
			}
			if rec.Field(field) != "" || validated.Value(field) != "" {
				continue
			}
			outcome.Fill(field, value, model.SourceTag(e.Name()))
		}
	}

	log.Debug("enrichment: complete", zap.Int("fields", len(outcome.Values)))
	return outcome
}
