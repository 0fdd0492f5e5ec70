package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/medatlas/provider-cli/internal/resilience"
)

// WebsiteScraper fetches practice websites via net/http and pulls provider
// details out of the raw HTML. An unreachable or non-200 page is not an
// error: it returns Reachable=false so callers can treat the source as
// silent rather than failed.
type WebsiteScraper struct {
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// WebsiteOption configures a WebsiteScraper.
type WebsiteOption func(*WebsiteScraper)

// WithClient sets a custom HTTP client.
func WithClient(hc *http.Client) WebsiteOption {
	return func(w *WebsiteScraper) { w.client = hc }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64) WebsiteOption {
	return func(w *WebsiteScraper) { w.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithRetryConfig overrides the fetch retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) WebsiteOption {
	return func(w *WebsiteScraper) { w.retry = cfg }
}

// NewWebsiteScraper creates a WebsiteScraper with sensible defaults.
func NewWebsiteScraper(opts ...WebsiteOption) *WebsiteScraper {
	w := &WebsiteScraper{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *WebsiteScraper) Name() string { return "website" }

// Scrape fetches a URL and extracts phone, email, address, specialty, and
// practice name. Only http/https URLs are accepted.
func (w *WebsiteScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if !strings.HasPrefix(targetURL, "http://") && !strings.HasPrefix(targetURL, "https://") {
		return nil, eris.Errorf("scrape: invalid url %q", targetURL)
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "scrape: rate limit wait")
	}

	retryCfg := w.retry
	retryCfg.OnRetry = resilience.RetryLogger("website", "fetch")

	body, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (string, error) {
		return w.fetch(ctx, targetURL)
	})
	if err != nil {
		return &Result{URL: targetURL, Reachable: false}, nil
	}

	return extractDetails(targetURL, body), nil
}

var errUnreachable = eris.New("scrape: target unreachable")

// fetch performs one GET. Network failures and retryable statuses come back
// as transient errors so the retry policy gets a second try; everything else
// is a definitive miss.
func (w *WebsiteScraper) fetch(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MedAtlasBot/1.0)")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", resilience.NewTransientError(err, 0)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return "", resilience.NewTransientError(errUnreachable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errUnreachable
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", errUnreachable
	}

	return string(body), nil
}

var (
	phoneRe   = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	emailRe   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	addressRe = regexp.MustCompile(`(?i)\d+\s+[A-Za-z0-9\s,]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Court|Ct|Way|Circle|Cir)[\s,]+[A-Za-z\s]+,\s*[A-Z]{2}\s+\d{5}`)
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Re      = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

var specialtyKeywords = []string{
	"cardiology", "orthopedics", "pediatrics", "dermatology",
	"family medicine", "internal medicine", "neurology", "oncology",
}

// extractDetails pulls provider fields from raw HTML.
func extractDetails(url, html string) *Result {
	res := &Result{URL: url, Reachable: true}

	if m := phoneRe.FindString(html); m != "" {
		res.Phone = strings.TrimSpace(m)
	}
	if m := emailRe.FindString(html); m != "" {
		res.Email = m
	}
	if m := addressRe.FindString(html); m != "" {
		res.Address = cleanText(m)
	}

	text := strings.ToLower(cleanText(tagRe.ReplaceAllString(html, " ")))
	for _, kw := range specialtyKeywords {
		if strings.Contains(text, kw) {
			res.Specialty = kw
			break
		}
	}

	if m := titleRe.FindStringSubmatch(html); len(m) > 1 {
		res.PracticeName = cleanText(tagRe.ReplaceAllString(m[1], " "))
	}
	if res.PracticeName == "" {
		if m := h1Re.FindStringSubmatch(html); len(m) > 1 {
			res.PracticeName = cleanText(tagRe.ReplaceAllString(m[1], " "))
		}
	}

	return res
}

// cleanText decodes common entities and collapses whitespace.
func cleanText(s string) string {
	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	s = r.Replace(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
