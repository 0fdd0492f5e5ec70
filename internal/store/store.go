// Package store persists provider records, discrepancies, and audit events.
package store

import (
	"context"

	"github.com/medatlas/provider-cli/internal/model"
)

// ProviderFilter specifies criteria for listing providers.
type ProviderFilter struct {
	Status model.ReviewStatus `json:"status,omitempty"`
	State  string             `json:"state,omitempty"`
	Limit  int                `json:"limit,omitempty"`
	Offset int                `json:"offset,omitempty"`
}

// Store defines the persistence interface for the reconciliation pipeline.
type Store interface {
	// Providers. UpsertProvider is idempotent keyed by provider id.
	UpsertProvider(ctx context.Context, rec *model.FinalRecord) error
	InsertProviders(ctx context.Context, recs []model.ProviderRecord) (int, error)
	GetProvider(ctx context.Context, id string) (*model.ProviderRecord, error)
	ListProviders(ctx context.Context, filter ProviderFilter) ([]model.ProviderRecord, error)

	// Discrepancies are append-only; review tooling updates status/notes.
	InsertDiscrepancies(ctx context.Context, discrepancies []model.Discrepancy) error
	ListDiscrepancies(ctx context.Context, providerID string) ([]model.Discrepancy, error)

	// Audit trail.
	LogEvent(ctx context.Context, event model.Event) error

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
