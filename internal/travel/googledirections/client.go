// Package googledirections provides a client for the legacy Google
// Directions API, the cascade's second tier. It accepts either
// coordinates or a free-text destination name.
package googledirections

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/sparehour/sparehour/internal/provider/resilience"
	"github.com/sparehour/sparehour/internal/travel"
)

const (
	// ProviderName identifies this travel provider.
	ProviderName = "google-directions"

	// DefaultBaseURL is the Directions API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 5 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Directions API client.
type ClientConfig struct {
	// APIKey is the Google Maps Platform API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 5s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Directions API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Directions API client.
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
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// modeOf maps a domain mode to the Directions API mode parameter.
func modeOf(mode travel.Mode) (string, error) {
	switch mode {
	case travel.ModeWalk:
		return "walking", nil
	case travel.ModeDrive:
		return "driving", nil
	case travel.ModeTransit:
		return "transit", nil
	default:
		return "", fmt.Errorf("unsupported travel mode %q", mode)
	}
}

// placeParam renders a place as a Directions API origin/destination
// parameter: "lat,lng" when coordinates are known, the name otherwise.
func placeParam(p travel.Place) string {
	if p.Coords != nil && p.Coords.Valid() {
		return fmt.Sprintf("%f,%f", p.Coords.Lat, p.Coords.Lng)
	}
	return p.Name
}

// Route resolves one mode between two places.
func (c *Client) Route(ctx context.Context, req travel.RouteRequest) (*travel.Leg, error) {
	apiMode, err := modeOf(req.Mode)
	if err != nil {
		return nil, &travel.Error{
			Provider: ProviderName,
			Code:     "UNSUPPORTED_MODE",
			Message:  err.Error(),
			Err:      travel.ErrNoRouteFound,
		}
	}

	params := url.Values{}
	params.Set("origin", placeParam(req.Origin))
	params.Set("destination", placeParam(req.Destination))
	params.Set("mode", apiMode)
	params.Set("key", c.apiKey)

	reqURL := fmt.Sprintf("%s/maps/api/directions/json?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Str("mode", apiMode).
		Str("destination", req.Destination.Name).
		Msg("requesting route from directions api")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &travel.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach directions api",
			Err:      travel.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &travel.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("directions api returned status %d", resp.StatusCode),
			Err:      travel.ErrProviderUnavailable,
		}
	}

	var dirResp directionsResponse
	if err := json.Unmarshal(respBody, &dirResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if err := c.handleStatus(dirResp.Status); err != nil {
		return nil, err
	}

	if len(dirResp.Routes) == 0 || len(dirResp.Routes[0].Legs) == 0 {
		return nil, &travel.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found between the given places",
			Err:      travel.ErrNoRouteFound,
		}
	}

	leg := dirResp.Routes[0].Legs[0]
	minutes := (leg.Duration.Value + 59) / 60
	if minutes < 1 {
		minutes = 1
	}

	return &travel.Leg{
		DurationMin:    minutes,
		DistanceMeters: leg.Distance.Value,
	}, nil
}

// handleStatus maps the Directions API status field to domain errors.
func (c *Client) handleStatus(status string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return &travel.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  "no route found between the given places",
			Err:      travel.ErrNoRouteFound,
		}
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return &travel.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  "directions api quota exceeded",
			Err:      travel.ErrRateLimitExceeded,
		}
	case "REQUEST_DENIED":
		return &travel.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  "directions api access denied - check API key configuration",
			Err:      travel.ErrProviderUnavailable,
		}
	default:
		return &travel.Error{
			Provider: ProviderName,
			Code:     status,
			Message:  fmt.Sprintf("directions api returned status %s", status),
			Err:      travel.ErrProviderUnavailable,
		}
	}
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration textValue `json:"duration"`
			Distance textValue `json:"distance"`
		} `json:"legs"`
	} `json:"routes"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}
