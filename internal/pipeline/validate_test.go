package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/medatlas/provider-cli/internal/model"
)

func TestValidate_MergesAdapterSignals(t *testing.T) {
	stage := NewValidationStage(
		&fakeAdapter{name: "phone", signals: []model.FieldSignal{
			{Field: model.FieldPhone, Value: "(555) 123-4567", Confidence: 100, Source: model.SourcePhone},
		}},
		&fakeAdapter{name: "address", signals: []model.FieldSignal{
			{Field: model.FieldCity, Value: "Boston", Confidence: 80, Source: model.SourceAddress},
		}},
	)

	outcome := stage.Validate(context.Background(), &model.ProviderRecord{ID: "p1"})
	assert.Equal(t, "(555) 123-4567", outcome.Value(model.FieldPhone))
	assert.Equal(t, 100, outcome.Confidence(model.FieldPhone))
	assert.Equal(t, "Boston", outcome.Value(model.FieldCity))
}

func TestValidate_HighestConfidenceWinsPerField(t *testing.T) {
	stage := NewValidationStage(
		&fakeAdapter{name: "web", signals: []model.FieldSignal{
			{Field: model.FieldPhone, Value: "web-phone", Confidence: 40, Source: model.SourceWeb},
		}},
		&fakeAdapter{name: "phone", signals: []model.FieldSignal{
			{Field: model.FieldPhone, Value: "(555) 123-4567", Confidence: 100, Source: model.SourcePhone},
		}},
	)

	outcome := stage.Validate(context.Background(), &model.ProviderRecord{})
	assert.Equal(t, "(555) 123-4567", outcome.Value(model.FieldPhone))
	assert.Equal(t, model.SourcePhone, outcome.Sources[model.FieldPhone])
}

func TestValidate_EqualConfidenceKeepsAdapterOrder(t *testing.T) {
	stage := NewValidationStage(
		&fakeAdapter{name: "a", signals: []model.FieldSignal{
			{Field: model.FieldCity, Value: "First", Confidence: 80, Source: model.SourceRegistry},
		}},
		&fakeAdapter{name: "b", signals: []model.FieldSignal{
			{Field: model.FieldCity, Value: "Second", Confidence: 80, Source: model.SourceAddress},
		}},
	)

	for i := 0; i < 10; i++ {
		outcome := stage.Validate(context.Background(), &model.ProviderRecord{})
		assert.Equal(t, "First", outcome.Value(model.FieldCity))
	}
}

func TestValidate_AdapterErrorCostsOnlyItsSignals(t *testing.T) {
	stage := NewValidationStage(
		&fakeAdapter{name: "registry", err: eris.New("registry down")},
		&fakeAdapter{name: "phone", signals: []model.FieldSignal{
			{Field: model.FieldPhone, Value: "(555) 123-4567", Confidence: 100, Source: model.SourcePhone},
		}},
	)

	outcome := stage.Validate(context.Background(), &model.ProviderRecord{})
	assert.Equal(t, "(555) 123-4567", outcome.Value(model.FieldPhone))
	assert.Len(t, outcome.Values, 1)
}

func TestValidate_NoAdapters(t *testing.T) {
	stage := NewValidationStage()
	outcome := stage.Validate(context.Background(), &model.ProviderRecord{})
	assert.Empty(t, outcome.Values)
}
