// Package npi provides a client for the NPPES NPI registry API.
package npi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the identity-registry lookup operation.
type Client interface {
	// Lookup queries the registry by NPI number. A missing record is not
	// an error: it returns Found=false with empty fields.
	Lookup(ctx context.Context, number string) (*LookupResult, error)
}

// LookupResult is the normalized registry response.
type LookupResult struct {
	Found  bool              `json:"found"`
	Fields map[string]string `json:"fields"`
}

// apiResponse mirrors the NPPES v2.1 JSON shape.
type apiResponse struct {
	ResultCount int         `json:"result_count"`
	Results     []apiResult `json:"results"`
}

type apiResult struct {
	Number string `json:"number"`
	Basic  struct {
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		OrganizationName string `json:"organization_name"`
	} `json:"basic"`
	Addresses []struct {
		AddressPurpose string `json:"address_purpose"`
		Address1       string `json:"address_1"`
		Address2       string `json:"address_2"`
		City           string `json:"city"`
		State          string `json:"state"`
		PostalCode     string `json:"postal_code"`
		TelephoneNum   string `json:"telephone_number"`
	} `json:"addresses"`
	Taxonomies []struct {
		Desc    string `json:"desc"`
		License string `json:"license"`
		State   string `json:"state"`
		Primary bool   `json:"primary"`
	} `json:"taxonomies"`
}

// Option configures the registry client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an NPI registry client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://npiregistry.cms.hhs.gov/api/",
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the status should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes the request with exponential backoff on transient
// failures. Returns the body and status code of the final attempt.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "npi: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("npi: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) Lookup(ctx context.Context, number string) (*LookupResult, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return &LookupResult{Found: false}, nil
	}

	q := url.Values{}
	q.Set("version", "2.1")
	q.Set("number", number)
	reqURL := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "npi: create request")
	}
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "npi: request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("npi: unexpected status %d: %s", statusCode, string(body))
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "npi: unmarshal response")
	}

	if resp.ResultCount == 0 || len(resp.Results) == 0 {
		return &LookupResult{Found: false}, nil
	}

	return &LookupResult{Found: true, Fields: flattenResult(resp.Results[0])}, nil
}

// flattenResult maps the nested NPPES record onto flat field names. The
// location address wins over the mailing address when both are present.
func flattenResult(r apiResult) map[string]string {
	fields := make(map[string]string)

	set := func(key, value string) {
		value = strings.TrimSpace(value)
		if value != "" {
			fields[key] = value
		}
	}

	set("npi", r.Number)
	set("first_name", r.Basic.FirstName)
	set("last_name", r.Basic.LastName)
	set("organization_name", r.Basic.OrganizationName)

	var chosen *struct {
		AddressPurpose string `json:"address_purpose"`
		Address1       string `json:"address_1"`
		Address2       string `json:"address_2"`
		City           string `json:"city"`
		State          string `json:"state"`
		PostalCode     string `json:"postal_code"`
		TelephoneNum   string `json:"telephone_number"`
	}
	for i := range r.Addresses {
		addr := &r.Addresses[i]
		if strings.EqualFold(addr.AddressPurpose, "LOCATION") {
			chosen = addr
			break
		}
		if chosen == nil {
			chosen = addr
		}
	}
	if chosen != nil {
		set("address_line1", chosen.Address1)
		set("address_line2", chosen.Address2)
		set("city", chosen.City)
		set("state", chosen.State)
		set("zip_code", chosen.PostalCode)
		set("phone", chosen.TelephoneNum)
	}

	for _, tax := range r.Taxonomies {
		if tax.Primary {
			set("specialty", tax.Desc)
			set("license_number", tax.License)
			set("license_state", tax.State)
			break
		}
	}

	return fields
}
