// Package ror provides a client for the Research Organization Registry
// affiliation-matching API.
package ror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultBaseURL is the public ROR API.
const DefaultBaseURL = "https://api.ror.org"

const maxBodyBytes = 8 << 20

// ErrUnparseable is returned when a 200 response body is not a valid
// affiliation result.
var ErrUnparseable = eris.New("ror: unparseable response")

// Client defines the ROR lookup operations.
type Client interface {
	// MatchAffiliation queries /organizations?affiliation= and returns the
	// first page of candidates.
	MatchAffiliation(ctx context.Context, affiliation string) (*SearchResponse, error)
}

// SearchResponse is the parsed affiliation response.
type SearchResponse struct {
	NumberOfResults int    `json:"number_of_results"`
	Items           []Item `json:"items"`
}

// Item is one candidate organization.
type Item struct {
	Organization Organization `json:"organization"`
	Chosen       bool         `json:"chosen"`
	Score        float64      `json:"score"`
	MatchingType string       `json:"matching_type"`
	Substring    string       `json:"substring"`
}

// Organization is the registry record embedded in an Item. Name is the v1
// schema; Names carries the v2 schema, where the display name is typed
// "ror_display".
type Organization struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Names []Name `json:"names"`
}

// Name is a typed organization name (v2 schema).
type Name struct {
	Value string   `json:"value"`
	Types []string `json:"types"`
}

// DisplayName returns the v1 name, falling back to the v2 ror_display name
// and then the first listed name.
func (o Organization) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	for _, n := range o.Names {
		for _, t := range n.Types {
			if t == "ror_display" {
				return n.Value
			}
		}
	}
	if len(o.Names) > 0 {
		return o.Names[0].Value
	}
	return ""
}

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ror: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the ROR client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a new ROR client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   DefaultBaseURL,
		userAgent: "ror-cli/1.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) MatchAffiliation(ctx context.Context, affiliation string) (*SearchResponse, error) {
	q := url.Values{"affiliation": {affiliation}}
	reqURL := fmt.Sprintf("%s/organizations?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ror: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ror: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "ror: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrapf(ErrUnparseable, "ror: unmarshal response: %v", err)
	}

	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
