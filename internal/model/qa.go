package model

import "time"

// ReviewStatus classifies a record by its aggregate confidence.
type ReviewStatus string

const (
	StatusPending           ReviewStatus = "pending"
	StatusNeedsReview       ReviewStatus = "needs_review"
	StatusReviewRecommended ReviewStatus = "review_recommended"
	StatusValidated         ReviewStatus = "validated"
)

// StatusForConfidence maps an aggregate confidence to a review status.
// The partition is half-open: [0,50) needs_review, [50,80)
// review_recommended, [80,100] validated.
func StatusForConfidence(confidence int) ReviewStatus {
	switch {
	case confidence < 50:
		return StatusNeedsReview
	case confidence < 80:
		return StatusReviewRecommended
	default:
		return StatusValidated
	}
}

// RiskLevel grades how costly an error in a field would be.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
)

// DiscrepancyStatus tracks the review lifecycle of a discrepancy. The
// pipeline only ever creates open discrepancies; resolution happens in
// review tooling outside the core.
type DiscrepancyStatus string

const (
	DiscrepancyOpen     DiscrepancyStatus = "open"
	DiscrepancyResolved DiscrepancyStatus = "resolved"
)

// Discrepancy records one field where the imported value disagrees with
// the value chosen by reconciliation. Immutable once created, except for
// Status and Notes which review tooling manages.
type Discrepancy struct {
	ID              string            `json:"id"`
	ProviderID      string            `json:"provider_id"`
	Field           string            `json:"field_name"`
	OriginalValue   string            `json:"original_value"`
	ReconciledValue string            `json:"reconciled_value"`
	Source          SourceTag         `json:"source"`
	RiskLevel       RiskLevel         `json:"risk_level"`
	Status          DiscrepancyStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at,omitempty"`
}

// QAResult is the reconciliation engine's verdict for one record. It is
// recomputed in full on every pipeline run, never patched incrementally.
type QAResult struct {
	ConfidenceScore int           `json:"confidence_score"`
	RiskScore       int           `json:"risk_score"`
	Status          ReviewStatus  `json:"status"`
	Discrepancies   []Discrepancy `json:"discrepancies"`
}

// RecordState is the per-record pipeline state machine.
type RecordState string

const (
	StatePending     RecordState = "pending"
	StateValidating  RecordState = "validating"
	StateEnriching   RecordState = "enriching"
	StateReconciling RecordState = "reconciling"
	StateMerging     RecordState = "merging"
	StateDone        RecordState = "done"
	StateErrored     RecordState = "errored"
)

// RunStats summarizes one pipeline run over a batch of records.
type RunStats struct {
	ValidatedCount   int `json:"validated"`
	NeedsReviewCount int `json:"needs_review"`
	ErroredCount     int `json:"errored"`
	TotalProcessed   int `json:"total"`
}

// Event is an audit-trail row for pipeline activity.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Source     string    `json:"source"`
	ProviderID string    `json:"provider_id,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
