package pipeline

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medatlas/provider-cli/internal/model"
)

// ReconciliationEngine compares the original record against validated and
// enriched values, records disagreements, and grades the record as a whole.
type ReconciliationEngine struct{}

// NewReconciliationEngine creates a reconciliation engine.
func NewReconciliationEngine() *ReconciliationEngine {
	return &ReconciliationEngine{}
}

// normalizeCompare lowercases and collapses whitespace for comparison.
func normalizeCompare(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Reconcile produces the QA verdict for one record. The result is
// computed in full every run; nothing is patched incrementally.
func (e *ReconciliationEngine) Reconcile(rec *model.ProviderRecord, validated *model.ValidationOutcome, enriched *model.EnrichmentOutcome) *model.QAResult {
	discrepancies := e.detectDiscrepancies(rec, validated, enriched)
	confidence := aggregateConfidence(validated)

	return &model.QAResult{
		ConfidenceScore: confidence,
		RiskScore:       riskScore(confidence, discrepancies),
		Status:          model.StatusForConfidence(confidence),
		Discrepancies:   discrepancies,
	}
}

// detectDiscrepancies walks the fixed comparison set. For each field the
// reconciled value is validated, else enriched, else original; a
// discrepancy is recorded when a non-empty original disagrees with a
// non-empty reconciled value. Fields empty in all three sources are
// skipped outright.
func (e *ReconciliationEngine) detectDiscrepancies(rec *model.ProviderRecord, validated *model.ValidationOutcome, enriched *model.EnrichmentOutcome) []model.Discrepancy {
	var out []model.Discrepancy

	for _, field := range model.ComparisonFields {
		original := rec.Field(field)

		reconciled := validated.Value(field)
		source := model.SourceTag("")
		if reconciled != "" {
			source = validatedSource(validated, field)
		} else if v := enriched.Value(field); v != "" {
			reconciled = v
			source = model.SourceEnriched
		} else {
			reconciled = original
			source = model.SourceOriginal
		}

		if original == "" || reconciled == "" {
			continue
		}
		if normalizeCompare(original) == normalizeCompare(reconciled) {
			continue
		}

		risk := model.RiskMedium
		if model.HighRiskFields[field] {
			risk = model.RiskHigh
		}
		out = append(out, model.Discrepancy{
			ID:              uuid.NewString(),
			ProviderID:      rec.ID,
			Field:           field,
			OriginalValue:   original,
			ReconciledValue: reconciled,
			Source:          source,
			RiskLevel:       risk,
			Status:          model.DiscrepancyOpen,
			CreatedAt:       time.Now().UTC(),
		})
	}

	return out
}

func validatedSource(validated *model.ValidationOutcome, field string) model.SourceTag {
	if validated == nil {
		return ""
	}
	return validated.Sources[field]
}

// aggregateConfidence is the rounded mean of the positive per-field
// confidences. Zero-confidence fields are excluded from the average, not
// averaged in as zeros; with no positive field at all the aggregate is 0.
func aggregateConfidence(validated *model.ValidationOutcome) int {
	if validated == nil {
		return 0
	}
	sum, count := 0, 0
	for _, c := range validated.Confidences {
		if c > 0 {
			sum += c
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

// riskScore grades how costly an error in this record would be. Low
// confidence sets the base; each discrepancy adds 15 on a high-risk
// field or 5 otherwise, capped at 100.
func riskScore(confidence int, discrepancies []model.Discrepancy) int {
	score := 0
	switch {
	case confidence < 50:
		score = 40
	case confidence < 70:
		score = 20
	}
	for _, d := range discrepancies {
		if d.RiskLevel == model.RiskHigh {
			score += 15
		} else {
			score += 5
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}
