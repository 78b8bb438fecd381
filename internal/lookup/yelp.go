package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/hungrybot/internal/domain"
)

// DefaultYelpBaseURL is the Yelp Fusion API root.
const DefaultYelpBaseURL = "https://api.yelp.com/v3"

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 512

var (
	ErrMissingAPIKey    = errors.New("yelp api key is not set")
	ErrUnexpectedStatus = errors.New("unexpected status from yelp")
	ErrMalformedBody    = errors.New("malformed yelp response")
)

// YelpConfig configures the Yelp Fusion client.
type YelpConfig struct {
	APIKey  string
	BaseURL string
	// Timeout bounds a whole search request. Zero means no timeout.
	Timeout time.Duration
	Limit   int
}

// YelpClient implements Searcher on top of the Yelp Fusion business search.
type YelpClient struct {
	apiKey  string
	baseURL string
	limit   int
	client  *http.Client
}

var _ Searcher = (*YelpClient)(nil)

// NewYelpClient creates a client. An empty BaseURL selects DefaultYelpBaseURL.
func NewYelpClient(cfg YelpConfig) *YelpClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultYelpBaseURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 1
	}
	return &YelpClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		limit:   limit,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type yelpSearchResponse struct {
	Businesses []struct {
		Name     string  `json:"name"`
		URL      string  `json:"url"`
		Rating   float64 `json:"rating"`
		ImageURL string  `json:"image_url"`
	} `json:"businesses"`
}

// SearchBusinesses queries /businesses/search for term near location.
func (c *YelpClient) SearchBusinesses(ctx context.Context, term, location string) ([]domain.Business, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("term", term)
	q.Set("location", location)
	q.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/businesses/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build yelp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yelp search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed yelpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	out := make([]domain.Business, 0, len(parsed.Businesses))
	for _, b := range parsed.Businesses {
		out = append(out, domain.Business{
			Name:     b.Name,
			URL:      b.URL,
			Rating:   b.Rating,
			ImageURL: b.ImageURL,
		})
	}
	return out, nil
}
