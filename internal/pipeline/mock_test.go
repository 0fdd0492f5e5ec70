package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/medatlas/provider-cli/internal/model"
	"github.com/medatlas/provider-cli/internal/store"
)

// fakeAdapter returns canned signals or a canned error.
type fakeAdapter struct {
	name    string
	signals []model.FieldSignal
	err     error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Signals(_ context.Context, _ *model.ProviderRecord) ([]model.FieldSignal, error) {
	return f.signals, f.err
}

// fakeEnricher returns canned fill-only fields or a canned error.
type fakeEnricher struct {
	name   string
	fields map[string]string
	err    error
}

func (f *fakeEnricher) Name() string { return f.name }

func (f *fakeEnricher) Fields(_ context.Context, _ *model.ProviderRecord) (map[string]string, error) {
	return f.fields, f.err
}

// memStore is an in-memory Store for orchestrator tests.
type memStore struct {
	mu            sync.Mutex
	providers     map[string]*model.FinalRecord
	discrepancies []model.Discrepancy
	events        []model.Event
	upsertErr     error
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{providers: make(map[string]*model.FinalRecord)}
}

func (m *memStore) UpsertProvider(_ context.Context, rec *model.FinalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.providers[rec.ID] = rec
	return nil
}

func (m *memStore) InsertProviders(_ context.Context, recs []model.ProviderRecord) (int, error) {
	return len(recs), nil
}

func (m *memStore) GetProvider(_ context.Context, id string) (*model.ProviderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.providers[id]
	if rec == nil {
		return nil, eris.Errorf("provider %s not found", id)
	}
	clone := rec.ProviderRecord.Clone()
	return &clone, nil
}

func (m *memStore) ListProviders(_ context.Context, _ store.ProviderFilter) ([]model.ProviderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ProviderRecord
	for _, rec := range m.providers {
		out = append(out, rec.ProviderRecord)
	}
	return out, nil
}

func (m *memStore) InsertDiscrepancies(_ context.Context, discrepancies []model.Discrepancy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discrepancies = append(m.discrepancies, discrepancies...)
	return nil
}

func (m *memStore) ListDiscrepancies(_ context.Context, providerID string) ([]model.Discrepancy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Discrepancy
	for _, d := range m.discrepancies {
		if d.ProviderID == providerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) LogEvent(_ context.Context, event model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memStore) Migrate(_ context.Context) error { return nil }
func (m *memStore) Close() error                    { return nil }
