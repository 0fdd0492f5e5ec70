package model

// SourceTag identifies which external source produced a signal.
type SourceTag string

const (
	SourceRegistry SourceTag = "registry"
	SourceAddress  SourceTag = "address"
	SourcePhone    SourceTag = "phone"
	SourceWeb      SourceTag = "web"
	SourceDocument SourceTag = "document"
	SourceOriginal SourceTag = "original"
	SourceEnriched SourceTag = "enriched"
)

// FieldSignal is one source's candidate value for a field, with a 0-100
// confidence that the value is correct. Signals are ephemeral: they live
// only between an adapter call and the stage that merges them.
type FieldSignal struct {
	Field      string    `json:"field"`
	Value      string    `json:"value"`
	Confidence int       `json:"confidence"`
	Source     SourceTag `json:"source"`
}

// ValidationOutcome holds the per-field values and confidences produced by
// the validation stage. A field with confidence 0 means every adapter that
// covered it failed or produced an implausible value.
type ValidationOutcome struct {
	Values      map[string]string `json:"values"`
	Confidences map[string]int    `json:"confidences"`
	Sources     map[string]SourceTag `json:"sources"`
}

// NewValidationOutcome returns an empty outcome ready for Absorb calls.
func NewValidationOutcome() *ValidationOutcome {
	return &ValidationOutcome{
		Values:      make(map[string]string),
		Confidences: make(map[string]int),
		Sources:     make(map[string]SourceTag),
	}
}

// Absorb merges a signal into the outcome. Highest confidence wins per
// field; an equal-confidence signal never displaces an earlier one, so the
// result is deterministic for a fixed adapter order.
func (o *ValidationOutcome) Absorb(sig FieldSignal) {
	if sig.Field == "" {
		return
	}
	if existing, ok := o.Confidences[sig.Field]; ok && existing >= sig.Confidence {
		return
	}
	o.Values[sig.Field] = sig.Value
	o.Confidences[sig.Field] = sig.Confidence
	o.Sources[sig.Field] = sig.Source
}

// Value returns the validated value for a field, or "".
func (o *ValidationOutcome) Value(field string) string {
	if o == nil {
		return ""
	}
	return o.Values[field]
}

// Confidence returns the validation confidence for a field, or 0.
func (o *ValidationOutcome) Confidence(field string) int {
	if o == nil {
		return 0
	}
	return o.Confidences[field]
}

// EnrichmentOutcome holds gap-filling values from supplementary sources.
// Values here carry no confidence: they may only fill empty fields
// downstream, never replace existing ones.
type EnrichmentOutcome struct {
	Values  map[string]string    `json:"values"`
	Sources map[string]SourceTag `json:"sources"`
}

// NewEnrichmentOutcome returns an empty fill-only outcome.
func NewEnrichmentOutcome() *EnrichmentOutcome {
	return &EnrichmentOutcome{
		Values:  make(map[string]string),
		Sources: make(map[string]SourceTag),
	}
}

// Fill records a value for a field unless one is already present. The
// first source to fill a gap keeps it; applying the same signals twice
// yields the same outcome as once.
func (o *EnrichmentOutcome) Fill(field, value string, source SourceTag) {
	if field == "" || value == "" {
		return
	}
	if _, ok := o.Values[field]; ok {
		return
	}
	o.Values[field] = value
	o.Sources[field] = source
}

// Value returns the enriched value for a field, or "".
func (o *EnrichmentOutcome) Value(field string) string {
	if o == nil {
		return ""
	}
	return o.Values[field]
}
