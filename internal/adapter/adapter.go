// Package adapter maps external signal sources onto uniform field signals.
package adapter

import (
	"context"
	"strings"

	"github.com/medatlas/provider-cli/internal/model"
)

// Adapter produces field signals for one record from a single external
// source. An adapter that has nothing to say returns an empty slice, not
// an error; errors are reserved for failures the stage should log.
type Adapter interface {
	Name() string
	Signals(ctx context.Context, rec *model.ProviderRecord) ([]model.FieldSignal, error)
}

// Enricher produces fill-only values with no confidence attached. Its
// output may only fill empty fields downstream, never replace them.
type Enricher interface {
	Name() string
	Fields(ctx context.Context, rec *model.ProviderRecord) (map[string]string, error)
}

// normalizeCompare lowercases and collapses whitespace so that values
// differing only in case or spacing compare equal.
func normalizeCompare(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// valuesMatch reports whether two values are equal under the pipeline's
// case and whitespace insensitive comparison.
func valuesMatch(a, b string) bool {
	return normalizeCompare(a) == normalizeCompare(b)
}

// NormalizeLicense uppercases a license number and strips everything but
// letters and digits, so "md-12345" and "MD 12345" store identically.
func NormalizeLicense(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
