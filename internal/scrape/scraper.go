package scrape

import "context"

// Result holds the details pulled from a practice website. Empty fields
// mean the page did not expose that detail.
type Result struct {
	URL          string
	Reachable    bool
	Phone        string
	Email        string
	Address      string
	Specialty    string
	PracticeName string
}

// Scraper fetches a practice website and extracts provider details.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
}
