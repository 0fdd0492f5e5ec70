package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medatlas/provider-cli/internal/model"
	"github.com/medatlas/provider-cli/internal/store"
)

// Orchestrator drives each record through validation, enrichment,
// reconciliation, and merge. Records are independent units of work; one
// record's failure never aborts the run.
type Orchestrator struct {
	validation  *ValidationStage
	enrichment  *EnrichmentStage
	reconciler  *ReconciliationEngine
	merger      *DirectoryMerger
	store       store.Store
	concurrency int
}

// NewOrchestrator wires the pipeline stages together. Concurrency bounds
// the number of records in flight at once.
func NewOrchestrator(validation *ValidationStage, enrichment *EnrichmentStage, st store.Store, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Orchestrator{
		validation:  validation,
		enrichment:  enrichment,
		reconciler:  NewReconciliationEngine(),
		merger:      NewDirectoryMerger(),
		store:       st,
		concurrency: concurrency,
	}
}

// RecordResult is the outcome of processing one record.
type RecordResult struct {
	Record *model.FinalRecord
	QA     *model.QAResult
	State  model.RecordState
	Err    error
}

// Run processes a batch of records through the pipeline with a bounded
// worker pool. Cancelling ctx stops dispatching new records; records
// already in flight run to completion so no provider is abandoned
// mid-merge.
func (o *Orchestrator) Run(ctx context.Context, records []model.ProviderRecord) (*model.RunStats, error) {
	log := zap.L()
	log.Info("pipeline: starting run",
		zap.Int("records", len(records)),
		zap.Int("concurrency", o.concurrency),
	)

	o.logEvent(ctx, "", "run_started", fmt.Sprintf("processing %d records", len(records)))

	var mu sync.Mutex
	stats := &model.RunStats{}

	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)

	for i := range records {
		if ctx.Err() != nil {
			log.Warn("pipeline: run cancelled, not dispatching remaining records",
				zap.Int("remaining", len(records)-i),
			)
			break
		}
		rec := records[i]
		g.Go(func() error {
			// In-flight records finish even if the run is cancelled.
			res := o.ProcessRecord(context.WithoutCancel(ctx), &rec)

			mu.Lock()
			defer mu.Unlock()
			stats.TotalProcessed++
			switch {
			case res.State == model.StateErrored:
				stats.ErroredCount++
				stats.NeedsReviewCount++
			case res.QA != nil && res.QA.Status == model.StatusValidated:
				stats.ValidatedCount++
			case res.QA != nil && res.QA.Status == model.StatusNeedsReview:
				stats.NeedsReviewCount++
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("pipeline: run complete",
		zap.Int("total", stats.TotalProcessed),
		zap.Int("validated", stats.ValidatedCount),
		zap.Int("needs_review", stats.NeedsReviewCount),
		zap.Int("errored", stats.ErroredCount),
	)
	o.logEvent(context.WithoutCancel(ctx), "", "run_completed",
		fmt.Sprintf("processed %d records, %d validated, %d needs review, %d errored",
			stats.TotalProcessed, stats.ValidatedCount, stats.NeedsReviewCount, stats.ErroredCount))

	return stats, ctx.Err()
}

// ProcessRecord runs the per-record state machine. Any failure lands in
// the errored state with the record forced to needs_review, confidence
// 0, risk 100; the record still appears in output rather than being
// silently dropped.
func (o *Orchestrator) ProcessRecord(ctx context.Context, rec *model.ProviderRecord) (res *RecordResult) {
	log := zap.L().With(zap.String("provider_id", rec.ID), zap.String("npi", rec.NPI))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: record panicked", zap.Any("panic", r))
			res = o.failRecord(ctx, rec, fmt.Errorf("record processing panicked: %v", r))
		}
	}()

	transition := func(s model.RecordState) {
		o.logEvent(ctx, rec.ID, "state", string(s))
	}
	transition(model.StatePending)

	transition(model.StateValidating)
	validated := o.validation.Validate(ctx, rec)

	transition(model.StateEnriching)
	enriched := o.enrichment.Enrich(ctx, rec, validated)

	transition(model.StateReconciling)
	qa := o.reconciler.Reconcile(rec, validated, enriched)

	transition(model.StateMerging)
	final := o.merger.Merge(rec, validated, enriched, qa)

	if err := o.persist(ctx, final, qa); err != nil {
		log.Error("pipeline: persist failed", zap.Error(err))
		return o.failRecord(ctx, rec, err)
	}

	transition(model.StateDone)
	log.Info("pipeline: record done",
		zap.Int("confidence", qa.ConfidenceScore),
		zap.Int("risk", qa.RiskScore),
		zap.String("status", string(qa.Status)),
		zap.Int("discrepancies", len(qa.Discrepancies)),
		zap.Duration("took", time.Since(start)),
	)

	return &RecordResult{Record: final, QA: qa, State: model.StateDone}
}

// failRecord forces a record into the errored shape and persists it so
// reviewers can see it failed.
func (o *Orchestrator) failRecord(ctx context.Context, rec *model.ProviderRecord, cause error) *RecordResult {
	failed := rec.Clone()
	failed.ConfidenceScore = 0
	failed.RiskScore = 100
	failed.ValidationStatus = string(model.StatusNeedsReview)

	final := &model.FinalRecord{ProviderRecord: failed}
	qa := &model.QAResult{
		ConfidenceScore: 0,
		RiskScore:       100,
		Status:          model.StatusNeedsReview,
	}

	if o.store != nil {
		if err := o.store.UpsertProvider(ctx, final); err != nil {
			zap.L().Error("pipeline: failed to persist errored record",
				zap.String("provider_id", rec.ID),
				zap.Error(err),
			)
		}
	}
	o.logEvent(ctx, rec.ID, "error", cause.Error())

	return &RecordResult{Record: final, QA: qa, State: model.StateErrored, Err: cause}
}

// persist writes the final record and its discrepancies, one write per
// record after merge.
func (o *Orchestrator) persist(ctx context.Context, final *model.FinalRecord, qa *model.QAResult) error {
	if o.store == nil {
		return nil
	}
	if err := o.store.UpsertProvider(ctx, final); err != nil {
		return err
	}
	if len(qa.Discrepancies) > 0 {
		if err := o.store.InsertDiscrepancies(ctx, qa.Discrepancies); err != nil {
			return err
		}
	}
	return nil
}

// logEvent records an audit-trail event; failures are logged, not fatal.
func (o *Orchestrator) logEvent(ctx context.Context, providerID, eventType, message string) {
	if o.store == nil {
		return
	}
	event := model.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Message:    message,
		Source:     "pipeline",
		ProviderID: providerID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.store.LogEvent(ctx, event); err != nil {
		zap.L().Debug("pipeline: failed to log event",
			zap.String("provider_id", providerID),
			zap.Error(err),
		)
	}
}
