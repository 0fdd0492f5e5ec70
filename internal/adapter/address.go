package adapter

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/medatlas/provider-cli/internal/model"
)

// abbrToState maps lowercase state abbreviations to lowercase full names.
var abbrToState = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut", "de": "delaware",
	"fl": "florida", "ga": "georgia", "hi": "hawaii", "id": "idaho",
	"il": "illinois", "in": "indiana", "ia": "iowa", "ks": "kansas",
	"ky": "kentucky", "la": "louisiana", "me": "maine", "md": "maryland",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota", "ms": "mississippi",
	"mo": "missouri", "mt": "montana", "ne": "nebraska", "nv": "nevada",
	"nh": "new hampshire", "nj": "new jersey", "nm": "new mexico", "ny": "new york",
	"nc": "north carolina", "nd": "north dakota", "oh": "ohio", "ok": "oklahoma",
	"or": "oregon", "pa": "pennsylvania", "ri": "rhode island", "sc": "south carolina",
	"sd": "south dakota", "tn": "tennessee", "tx": "texas", "ut": "utah",
	"vt": "vermont", "va": "virginia", "wa": "washington", "wv": "west virginia",
	"wi": "wisconsin", "wy": "wyoming", "dc": "district of columbia",
}

// stateToAbbr maps lowercase full names to lowercase abbreviations.
var stateToAbbr = func() map[string]string {
	m := make(map[string]string, len(abbrToState))
	for abbr, full := range abbrToState {
		m[full] = abbr
	}
	return m
}()

var (
	titleCaser = cases.Title(language.AmericanEnglish)
	zipRe      = regexp.MustCompile(`^\d{5}(\d{4})?$`)
)

// AddressAdapter normalizes a record's address components. Pure, no network.
type AddressAdapter struct{}

// NewAddressAdapter creates the address normalization adapter.
func NewAddressAdapter() *AddressAdapter { return &AddressAdapter{} }

func (a *AddressAdapter) Name() string { return "address" }

// Signals normalizes the address components and scores them as a unit.
// Confidence 80 needs street plus both city and state, 60 is street alone,
// 30 is street plus one of the two. An empty street line yields nothing.
func (a *AddressAdapter) Signals(_ context.Context, rec *model.ProviderRecord) ([]model.FieldSignal, error) {
	street := strings.TrimSpace(rec.AddressLine1)
	if street == "" {
		return nil, nil
	}

	city := strings.TrimSpace(rec.City)
	state := strings.TrimSpace(rec.State)
	zip := strings.TrimSpace(rec.ZipCode)

	var confidence int
	switch {
	case city != "" && state != "":
		confidence = 80
	case city == "" && state == "":
		confidence = 60
	default:
		confidence = 30
	}

	signals := []model.FieldSignal{{
		Field:      model.FieldAddressLine1,
		Value:      titleCaser.String(strings.ToLower(street)),
		Confidence: confidence,
		Source:     model.SourceAddress,
	}}
	if city != "" {
		signals = append(signals, model.FieldSignal{
			Field:      model.FieldCity,
			Value:      titleCaser.String(strings.ToLower(city)),
			Confidence: confidence,
			Source:     model.SourceAddress,
		})
	}
	if state != "" {
		signals = append(signals, model.FieldSignal{
			Field:      model.FieldState,
			Value:      NormalizeState(state),
			Confidence: confidence,
			Source:     model.SourceAddress,
		})
	}
	if z := NormalizeZip(zip); z != "" {
		signals = append(signals, model.FieldSignal{
			Field:      model.FieldZipCode,
			Value:      z,
			Confidence: confidence,
			Source:     model.SourceAddress,
		})
	}

	return signals, nil
}

// NormalizeState maps a state name or abbreviation to its uppercase
// two-letter form. Unknown inputs pass through trimmed.
func NormalizeState(state string) string {
	lower := strings.ToLower(strings.TrimSpace(state))
	if lower == "" {
		return ""
	}
	if _, ok := abbrToState[lower]; ok {
		return strings.ToUpper(lower)
	}
	if abbr, ok := stateToAbbr[lower]; ok {
		return strings.ToUpper(abbr)
	}
	return strings.TrimSpace(state)
}

// NormalizeZip formats a 9-digit zip as #####-####. Five-digit zips and
// already hyphenated zip+4 pass through; anything else returns "".
func NormalizeZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return ""
	}
	compact := strings.ReplaceAll(zip, "-", "")
	if !zipRe.MatchString(compact) {
		return ""
	}
	if len(compact) == 9 {
		return compact[:5] + "-" + compact[5:]
	}
	return compact
}
