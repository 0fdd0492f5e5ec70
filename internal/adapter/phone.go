package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/medatlas/provider-cli/internal/model"
)

// PhoneAdapter normalizes a record's phone number. Pure, no network.
type PhoneAdapter struct{}

// NewPhoneAdapter creates the phone normalization adapter.
func NewPhoneAdapter() *PhoneAdapter { return &PhoneAdapter{} }

func (a *PhoneAdapter) Name() string { return "phone" }

// Signals normalizes the phone field. A complete national number formats
// to (AAA) BBB-CCCC at confidence 100; an ambiguous 7-9 digit run keeps
// the raw value at confidence 60; anything else scores 0.
func (a *PhoneAdapter) Signals(_ context.Context, rec *model.ProviderRecord) ([]model.FieldSignal, error) {
	raw := strings.TrimSpace(rec.Phone)
	if raw == "" {
		return nil, nil
	}

	value, confidence := NormalizePhone(raw)
	return []model.FieldSignal{{
		Field:      model.FieldPhone,
		Value:      value,
		Confidence: confidence,
		Source:     model.SourcePhone,
	}}, nil
}

// NormalizePhone strips punctuation and formats a US number. An 11-digit
// number with a leading country 1 is treated as 10 digits.
func NormalizePhone(raw string) (string, int) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}

	switch {
	case len(d) == 10:
		return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:]), 100
	case len(d) >= 7 && len(d) <= 9:
		return strings.TrimSpace(raw), 60
	default:
		return "", 0
	}
}
