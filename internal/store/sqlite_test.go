package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medatlas/provider-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRecord(id string) model.ProviderRecord {
	return model.ProviderRecord{
		ID:           id,
		NPI:          "1234567890",
		FirstName:    "Jane",
		LastName:     "Doe",
		Specialty:    "Cardiology",
		AddressLine1: "100 Main Street",
		City:         "Boston",
		State:        "MA",
		ZipCode:      "02110",
		Phone:        "(617) 555-0100",
	}
}

func TestSQLite_UpsertAndGetProvider(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	final := &model.FinalRecord{
		ProviderRecord: sampleRecord("p1"),
		MergedFrom:     map[string]string{"phone": "validated"},
	}
	final.ConfidenceScore = 85
	final.ValidationStatus = string(model.StatusValidated)
	require.NoError(t, s.UpsertProvider(ctx, final))

	got, err := s.GetProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, 85, got.ConfidenceScore)
	assert.Equal(t, string(model.StatusValidated), got.ValidationStatus)
}

func TestSQLite_UpsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	final := &model.FinalRecord{ProviderRecord: sampleRecord("p1")}
	require.NoError(t, s.UpsertProvider(ctx, final))

	final.Phone = "(617) 555-0199"
	require.NoError(t, s.UpsertProvider(ctx, final))

	got, err := s.GetProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "(617) 555-0199", got.Phone)

	all, err := s.ListProviders(ctx, ProviderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_UpsertAssignsID(t *testing.T) {
	s := newTestStore(t)
	final := &model.FinalRecord{ProviderRecord: sampleRecord("")}
	require.NoError(t, s.UpsertProvider(context.Background(), final))
	assert.NotEmpty(t, final.ID)
}

func TestSQLite_GetProviderNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProvider(context.Background(), "missing")
	require.Error(t, err)
}

func TestSQLite_InsertProviders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recs := []model.ProviderRecord{sampleRecord("a"), sampleRecord("b"), sampleRecord("")}
	n, err := s.InsertProviders(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := s.ListProviders(ctx, ProviderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, rec := range all {
		assert.Equal(t, string(model.StatusPending), rec.ValidationStatus)
	}
}

func TestSQLite_ListProvidersFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleRecord("a")
	a.ValidationStatus = string(model.StatusValidated)
	b := sampleRecord("b")
	b.State = "IL"
	b.ValidationStatus = string(model.StatusNeedsReview)
	_, err := s.InsertProviders(ctx, []model.ProviderRecord{a, b})
	require.NoError(t, err)

	validated, err := s.ListProviders(ctx, ProviderFilter{Status: model.StatusValidated})
	require.NoError(t, err)
	require.Len(t, validated, 1)
	assert.Equal(t, "a", validated[0].ID)

	illinois, err := s.ListProviders(ctx, ProviderFilter{State: "IL"})
	require.NoError(t, err)
	require.Len(t, illinois, 1)
	assert.Equal(t, "b", illinois[0].ID)

	limited, err := s.ListProviders(ctx, ProviderFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_Discrepancies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertProvider(ctx, &model.FinalRecord{ProviderRecord: sampleRecord("p1")}))

	discs := []model.Discrepancy{
		{
			ProviderID:      "p1",
			Field:           model.FieldPhone,
			OriginalValue:   "555-000-0000",
			ReconciledValue: "(555) 111-2222",
			Source:          model.SourcePhone,
			RiskLevel:       model.RiskMedium,
			Status:          model.DiscrepancyOpen,
		},
		{
			ProviderID:      "p1",
			Field:           model.FieldNPI,
			OriginalValue:   "1111111111",
			ReconciledValue: "1234567890",
			Source:          model.SourceRegistry,
			RiskLevel:       model.RiskHigh,
			Status:          model.DiscrepancyOpen,
			CreatedAt:       time.Now().UTC(),
		},
	}
	require.NoError(t, s.InsertDiscrepancies(ctx, discs))

	got, err := s.ListDiscrepancies(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, d := range got {
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, model.DiscrepancyOpen, d.Status)
	}
}

func TestSQLite_InsertDiscrepanciesEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertDiscrepancies(context.Background(), nil))
}

func TestSQLite_LogEvent(t *testing.T) {
	s := newTestStore(t)
	err := s.LogEvent(context.Background(), model.Event{
		Type:       "state",
		Message:    "done",
		Source:     "pipeline",
		ProviderID: "p1",
	})
	require.NoError(t, err)
}
