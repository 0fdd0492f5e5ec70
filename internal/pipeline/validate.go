// Package pipeline reconciles imported provider records against external
// signal sources and produces canonical directory entries.
package pipeline

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medatlas/provider-cli/internal/adapter"
	"github.com/medatlas/provider-cli/internal/model"
)

// ValidationStage runs the independent signal adapters for one record
// and merges their output. It never fails: an adapter error costs that
// adapter its signals and nothing more.
type ValidationStage struct {
	adapters []adapter.Adapter
}

// NewValidationStage creates a validation stage over the given adapters.
func NewValidationStage(adapters ...adapter.Adapter) *ValidationStage {
	return &ValidationStage{adapters: adapters}
}

// Validate runs all adapters concurrently and absorbs their signals into
// one outcome. Signals are absorbed in a fixed adapter order so equal
// confidence ties resolve deterministically regardless of completion order.
func (s *ValidationStage) Validate(ctx context.Context, rec *model.ProviderRecord) *model.ValidationOutcome {
	log := zap.L().With(zap.String("provider_id", rec.ID))

	type adapterOutput struct {
		order   int
		name    string
		signals []model.FieldSignal
	}

	var mu sync.Mutex
	outputs := make([]adapterOutput, 0, len(s.adapters))

	g, gCtx := errgroup.WithContext(ctx)
	for i, a := range s.adapters {
		g.Go(func() error {
			signals, err := a.Signals(gCtx, rec)
			if err != nil {
				log.Warn("validation: adapter failed",
					zap.String("adapter", a.Name()),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			outputs = append(outputs, adapterOutput{order: i, name: a.Name(), signals: signals})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(outputs, func(i, j int) bool { return outputs[i].order < outputs[j].order })

	outcome := model.NewValidationOutcome()
	for _, out := range outputs {
		for _, sig := range out.signals {
			outcome.Absorb(sig)
		}
	}

	log.Debug("validation: complete", zap.Int("fields", len(outcome.Values)))
	return outcome
}
