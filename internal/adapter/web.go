package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/medatlas/provider-cli/internal/model"
	"github.com/medatlas/provider-cli/internal/scrape"
)

// WebAdapter checks a record's practice website and extracts contact
// details from it. Confidence accumulates per detail found rather than
// being graded per field, since a page that exposes several matching
// details is a stronger identity signal overall.
type WebAdapter struct {
	scraper     scrape.Scraper
	specialties *SpecialtyNormalizer
	timeout     time.Duration
}

// NewWebAdapter creates a web presence adapter.
func NewWebAdapter(scraper scrape.Scraper, specialties *SpecialtyNormalizer, timeout time.Duration) *WebAdapter {
	if specialties == nil {
		specialties = NewSpecialtyNormalizer()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebAdapter{scraper: scraper, specialties: specialties, timeout: timeout}
}

func (a *WebAdapter) Name() string { return "web" }

// Signals scrapes the record's website. Confidence adds 40 for a phone,
// 30 for a practice name, and 30 for a specialty, capped at 100. An
// unreachable site or a missing/invalid URL yields nothing.
func (a *WebAdapter) Signals(ctx context.Context, rec *model.ProviderRecord) ([]model.FieldSignal, error) {
	url := strings.TrimSpace(rec.Website)
	if url == "" {
		return nil, nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := a.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	if !res.Reachable {
		return nil, nil
	}

	confidence := 0
	if res.Phone != "" {
		confidence += 40
	}
	if res.PracticeName != "" {
		confidence += 30
	}
	if res.Specialty != "" {
		confidence += 30
	}
	if confidence > 100 {
		confidence = 100
	}
	if confidence == 0 {
		return nil, nil
	}

	var signals []model.FieldSignal
	add := func(field, value string) {
		if value == "" {
			return
		}
		signals = append(signals, model.FieldSignal{
			Field:      field,
			Value:      value,
			Confidence: confidence,
			Source:     model.SourceWeb,
		})
	}
	if res.Phone != "" {
		phone, _ := NormalizePhone(res.Phone)
		if phone == "" {
			phone = res.Phone
		}
		add(model.FieldPhone, phone)
	}
	add(model.FieldPracticeName, res.PracticeName)
	add(model.FieldSpecialty, a.specialties.Normalize(res.Specialty))
	add(model.FieldEmail, res.Email)

	return signals, nil
}
