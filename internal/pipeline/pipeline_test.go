package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medatlas/provider-cli/internal/adapter"
	"github.com/medatlas/provider-cli/internal/model"
)

func newTestOrchestrator(st *memStore, adapters []adapter.Adapter, enrichers []adapter.Enricher) *Orchestrator {
	return NewOrchestrator(NewValidationStage(adapters...), NewEnrichmentStage(enrichers...), st, 2)
}

func TestProcessRecord_HappyPath(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(st, []adapter.Adapter{&fakeAdapter{
		name: "phone",
		signals: []model.FieldSignal{
			{Field: model.FieldPhone, Value: "(555) 123-4567", Confidence: 100, Source: model.SourcePhone},
		},
	}}, nil)

	res := o.ProcessRecord(context.Background(), &model.ProviderRecord{ID: "p1", Phone: "5551234567"})
	require.NotNil(t, res)
	assert.Equal(t, model.StateDone, res.State)
	assert.Equal(t, 100, res.QA.ConfidenceScore)
	assert.Equal(t, model.StatusValidated, res.QA.Status)
	assert.Contains(t, st.providers, "p1")
}

func TestProcessRecord_PersistsDiscrepancies(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(st, []adapter.Adapter{&fakeAdapter{
		name: "phone",
		signals: []model.FieldSignal{
			{Field: model.FieldPhone, Value: "(555) 111-2222", Confidence: 100, Source: model.SourcePhone},
		},
	}}, nil)

	res := o.ProcessRecord(context.Background(), &model.ProviderRecord{ID: "p1", Phone: "555-000-0000"})
	require.Equal(t, model.StateDone, res.State)
	assert.Len(t, st.discrepancies, 1)
	assert.Equal(t, "p1", st.discrepancies[0].ProviderID)
}

func TestProcessRecord_PersistFailureForcesNeedsReview(t *testing.T) {
	st := newMemStore()
	st.upsertErr = eris.New("disk full")
	o := newTestOrchestrator(st, nil, nil)

	res := o.ProcessRecord(context.Background(), &model.ProviderRecord{ID: "p1"})
	assert.Equal(t, model.StateErrored, res.State)
	assert.Equal(t, model.StatusNeedsReview, res.QA.Status)
	assert.Equal(t, 0, res.QA.ConfidenceScore)
	assert.Equal(t, 100, res.QA.RiskScore)
	assert.Error(t, res.Err)
}

func TestRun_AggregatesStats(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(st, []adapter.Adapter{&fakeAdapter{
		name: "phone",
		signals: []model.FieldSignal{
			{Field: model.FieldPhone, Value: "(555) 123-4567", Confidence: 100, Source: model.SourcePhone},
		},
	}}, nil)

	records := []model.ProviderRecord{
		{ID: "a", Phone: "5551234567"},
		{ID: "b", Phone: "5551234567"},
		{ID: "c", Phone: "5551234567"},
	}
	stats, err := o.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProcessed)
	assert.Equal(t, 3, stats.ValidatedCount)
	assert.Zero(t, stats.ErroredCount)
	assert.Len(t, st.providers, 3)
}

func TestRun_NoSignalsCountsNeedsReview(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(st, nil, nil)

	stats, err := o.Run(context.Background(), []model.ProviderRecord{{ID: "a"}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProcessed)
	assert.Equal(t, 1, stats.NeedsReviewCount)
}

func TestRun_OneFailureDoesNotAbortBatch(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(st, []adapter.Adapter{&fakeAdapter{
		name: "registry",
		err:  eris.New("registry timeout"),
	}, &fakeAdapter{
		name: "phone",
		signals: []model.FieldSignal{
			{Field: model.FieldPhone, Value: "(555) 123-4567", Confidence: 100, Source: model.SourcePhone},
		},
	}}, nil)

	records := []model.ProviderRecord{{ID: "a"}, {ID: "b"}}
	stats, err := o.Run(context.Background(), records)
	require.NoError(t, err)
	// A failed adapter degrades confidence, it does not error the record.
	assert.Equal(t, 2, stats.TotalProcessed)
	assert.Zero(t, stats.ErroredCount)
	assert.Len(t, st.providers, 2)
}

func TestRun_CancelledContextStopsDispatch(t *testing.T) {
	st := newMemStore()
	o := newTestOrchestrator(st, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := o.Run(ctx, []model.ProviderRecord{{ID: "a"}, {ID: "b"}})
	assert.Error(t, err)
	assert.Zero(t, stats.TotalProcessed)
	assert.Empty(t, st.providers)
}

func TestRun_EmptyBatch(t *testing.T) {
	o := newTestOrchestrator(newMemStore(), nil, nil)
	stats, err := o.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProcessed)
}
