// Package serpapi provides a client for the SerpAPI Google Maps engine,
// the primary candidate-discovery provider.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/sparehour/sparehour/internal/geo"
	"github.com/sparehour/sparehour/internal/provider/resilience"
	"github.com/sparehour/sparehour/internal/search"
)

const (
	// ProviderName identifies this search provider.
	ProviderName = "serpapi"

	// DefaultBaseURL is the SerpAPI base URL.
	DefaultBaseURL = "https://serpapi.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 4 * time.Second

	// maxResults caps candidates per query.
	maxResults = 10

	// defaultZoom is the map zoom level used for the ll parameter.
	defaultZoom = "12z"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the SerpAPI client.
type ClientConfig struct {
	// APIKey is the SerpAPI key (required).
	APIKey string

	// Origin centers every search.
	Origin geo.Coordinates

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 4s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a SerpAPI Google Maps client.
type Client struct {
	apiKey     string
	origin     geo.Coordinates
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new SerpAPI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		origin:     cfg.Origin,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search runs one Google Maps engine query and returns raw candidates.
func (c *Client) Search(ctx context.Context, q search.Query) ([]search.Candidate, error) {
	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("q", q.Text)
	params.Set("api_key", c.apiKey)
	params.Set("ll", fmt.Sprintf("@%f,%f,%s", c.origin.Lat, c.origin.Lng, defaultZoom))
	params.Set("type", "search")
	if q.Locale != "" {
		params.Set("hl", q.Locale)
	}

	reqURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Str("query", q.Text).
		Str("locale", q.Locale).
		Msg("searching serpapi google maps")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &search.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach search provider",
			Err:      search.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode)
	}

	var searchResp serpResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	results := searchResp.LocalResults
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	candidates := make([]search.Candidate, 0, len(results))
	for _, place := range results {
		cand := search.Candidate{
			Title:       place.Title,
			Rating:      place.Rating,
			ReviewCount: parseReviewCount(place.Reviews),
			PlaceType:   place.Type,
			OpenState:   place.OpenState,
			Address:     place.Address,
			Description: place.Description,
			PlaceID:     place.PlaceID,
			Source:      ProviderName,
		}
		if place.GPSCoordinates != nil {
			cand.Coords = &geo.Coordinates{
				Lat: place.GPSCoordinates.Latitude,
				Lng: place.GPSCoordinates.Longitude,
			}
		}
		candidates = append(candidates, cand)
	}

	c.logger.Debug().
		Str("query", q.Text).
		Int("candidate_count", len(candidates)).
		Msg("serpapi search complete")

	return candidates, nil
}

// handleErrorResponse maps HTTP error statuses to domain errors.
func (c *Client) handleErrorResponse(statusCode int) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &search.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "search provider rate limit exceeded",
			Err:      search.ErrRateLimitExceeded,
		}
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &search.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "search provider access denied - check API key configuration",
			Err:      search.ErrProviderUnavailable,
		}
	case statusCode >= 500:
		return &search.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "search provider is temporarily unavailable",
			Err:      search.ErrProviderUnavailable,
		}
	default:
		return &search.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("search provider returned status %d", statusCode),
			Err:      search.ErrProviderUnavailable,
		}
	}
}

var reviewCountPattern = regexp.MustCompile(`\d+`)

// parseReviewCount extracts the leading number from strings like
// "1,234 reviews". SerpAPI also returns bare numbers, handled first.
func parseReviewCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	match := reviewCountPattern.FindString(s)
	if match == "" {
		return 0
	}
	count, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return count
}

type serpResponse struct {
	LocalResults []serpPlace `json:"local_results"`
}

type serpPlace struct {
	Title          string          `json:"title"`
	Rating         float64         `json:"rating"`
	Reviews        json.RawMessage `json:"reviews"`
	Type           string          `json:"type"`
	GPSCoordinates *serpGPS        `json:"gps_coordinates"`
	OpenState      string          `json:"open_state"`
	Address        string          `json:"address"`
	Description    string          `json:"description"`
	PlaceID        string          `json:"place_id"`
}

type serpGPS struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
