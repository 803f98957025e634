// Package tmdb wraps the two metadata-provider calls the catalog needs:
// search by title and fetch details (with credits) by id.
//
// Search takes the first result only. The upstream behaviour this mirrors did
// no ranking or disambiguation either; returning multiple candidates for
// caller selection would be an API change, not a bug fix.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the provider has no match for the request.
var ErrNotFound = errors.New("tmdb: not found")

// ErrUnavailable is returned when the provider cannot be reached or answers
// with an unexpected status. Transport failures wrap it so callers can
// classify with errors.Is.
var ErrUnavailable = errors.New("tmdb: provider unavailable")

// SearchResult is the top hit of a title search.
type SearchResult struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	PosterPath *string `json:"poster_path"`
}

// Genre is a provider-side genre label.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductionCountry carries the ISO country code of a producing country.
type ProductionCountry struct {
	ISOCode string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

// CrewCredit is a single crew entry from the credits payload.
type CrewCredit struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits holds the crew list appended to a detail response.
type Credits struct {
	Crew []CrewCredit `json:"crew"`
}

// MovieDetails is the detail payload for a single movie, credits included.
type MovieDetails struct {
	ID                  int64               `json:"id"`
	Title               string              `json:"title"`
	Overview            string              `json:"overview"`
	Runtime             *int                `json:"runtime"`
	PosterPath          *string             `json:"poster_path"`
	Genres              []Genre             `json:"genres"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	Credits             Credits             `json:"credits"`
}

// Client defines the contract for querying the metadata provider.
type Client interface {
	SearchByTitle(ctx context.Context, title string) (SearchResult, error)
	FetchDetails(ctx context.Context, id int64) (MovieDetails, error)
}

// HTTPClient implements Client over HTTP with bearer-token auth. Outbound
// calls share a rate limiter so bulk ingestion stays inside provider quotas.
type HTTPClient struct {
	baseURL *url.URL
	token   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed metadata client. ratePerSec
// bounds the steady-state request rate across both endpoints.
func NewHTTPClient(baseURL, token string, timeout time.Duration, ratePerSec float64, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		token:   token,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
		logger:  logger,
	}, nil
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchByTitle issues a title search and returns the first result.
func (c *HTTPClient) SearchByTitle(ctx context.Context, title string) (SearchResult, error) {
	rel := &url.URL{Path: "/3/search/movie"}
	q := rel.Query()
	q.Set("query", title)
	rel.RawQuery = q.Encode()

	var payload searchResponse
	if err := c.get(ctx, rel, &payload); err != nil {
		return SearchResult{}, err
	}
	if len(payload.Results) == 0 {
		return SearchResult{}, ErrNotFound
	}
	return payload.Results[0], nil
}

// FetchDetails retrieves the detail payload, crew credits included, for a
// movie id previously returned by SearchByTitle.
func (c *HTTPClient) FetchDetails(ctx context.Context, id int64) (MovieDetails, error) {
	rel := &url.URL{Path: fmt.Sprintf("/3/movie/%d", id)}
	q := rel.Query()
	q.Set("append_to_response", "credits")
	rel.RawQuery = q.Encode()

	var payload MovieDetails
	if err := c.get(ctx, rel, &payload); err != nil {
		return MovieDetails{}, err
	}
	return payload, nil
}

func (c *HTTPClient) get(ctx context.Context, rel *url.URL, dst interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	endpoint := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode tmdb response: %w", err)
		}
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		c.logger.Printf("tmdb: unexpected status %d for %s", resp.StatusCode, rel.Path)
		return fmt.Errorf("%w: upstream returned %d", ErrUnavailable, resp.StatusCode)
	}
}
