package adapter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/medatlas/provider-cli/internal/model"
	"github.com/medatlas/provider-cli/internal/resilience"
	"github.com/medatlas/provider-cli/pkg/npi"
)

// registryCompareFields is the fixed set used to grade a registry hit
// against the imported record.
var registryCompareFields = []string{
	model.FieldFirstName, model.FieldLastName, model.FieldCity, model.FieldState,
}

// RegistryAdapter looks a provider up in the NPI registry and grades the
// hit against the imported record. A breaker shields the registry from
// hammering when it is down; an open breaker reads as a silent source.
type RegistryAdapter struct {
	client  npi.Client
	breaker *resilience.CircuitBreaker
	timeout time.Duration
}

// NewRegistryAdapter creates a registry adapter with the given lookup client.
func NewRegistryAdapter(client npi.Client, timeout time.Duration) *RegistryAdapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RegistryAdapter{
		client:  client,
		breaker: resilience.NewCircuitBreaker(5, 30*time.Second),
		timeout: timeout,
	}
}

func (a *RegistryAdapter) Name() string { return "registry" }

// Signals looks up the record's NPI. Confidence starts at 80 for a found
// record and is regraded as 50 + 50 * matched/compared over name, city,
// and state when the imported record has values to compare. Lookup
// failure, timeout, and not-found all yield no signals.
func (a *RegistryAdapter) Signals(ctx context.Context, rec *model.ProviderRecord) ([]model.FieldSignal, error) {
	if rec.NPI == "" {
		return nil, nil
	}
	if !a.breaker.Allow() {
		zap.L().Debug("registry breaker open, skipping lookup", zap.String("npi", rec.NPI))
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := a.client.Lookup(ctx, rec.NPI)
	if err != nil {
		a.breaker.Failure()
		return nil, err
	}
	a.breaker.Success()

	if !res.Found {
		return nil, nil
	}

	confidence := registryConfidence(res.Fields, rec)

	signals := make([]model.FieldSignal, 0, len(res.Fields))
	for field, value := range res.Fields {
		if value == "" || model.IsSystemField(field) {
			continue
		}
		if field == model.FieldLicenseNumber {
			value = NormalizeLicense(value)
		}
		signals = append(signals, model.FieldSignal{
			Field:      field,
			Value:      value,
			Confidence: confidence,
			Source:     model.SourceRegistry,
		})
	}
	return signals, nil
}

// registryConfidence grades a registry hit. Fields enter the comparison
// only when both sides are non-empty; with nothing to compare the base
// confidence of 80 stands.
func registryConfidence(registry map[string]string, rec *model.ProviderRecord) int {
	compared, matched := 0, 0
	for _, field := range registryCompareFields {
		regVal := registry[field]
		origVal := rec.Field(field)
		if regVal == "" || origVal == "" {
			continue
		}
		compared++
		if valuesMatch(regVal, origVal) {
			matched++
		}
	}
	if compared == 0 {
		return 80
	}
	return 50 + (50*matched)/compared
}
