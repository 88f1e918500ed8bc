// Package googleroutes provides a client for the Google Routes API
// (routes.googleapis.com computeRoutes), the cascade's precision tier.
package googleroutes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sparehour/sparehour/internal/provider/resilience"
	"github.com/sparehour/sparehour/internal/travel"
)

const (
	// ProviderName identifies this travel provider.
	ProviderName = "google-routes"

	// DefaultBaseURL is the Routes API base URL.
	DefaultBaseURL = "https://routes.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 5 * time.Second

	// fieldMask limits the response to duration and distance only.
	fieldMask = "routes.duration,routes.distanceMeters"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Routes API client.
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

// Client is a Google Routes API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Routes API client.
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

// travelModeOf maps a domain mode to the Routes API travel mode.
func travelModeOf(mode travel.Mode) (string, error) {
	switch mode {
	case travel.ModeWalk:
		return "WALK", nil
	case travel.ModeDrive:
		return "DRIVE", nil
	case travel.ModeTransit:
		return "TRANSIT", nil
	default:
		return "", fmt.Errorf("unsupported travel mode %q", mode)
	}
}

// Route resolves one mode between two places.
func (c *Client) Route(ctx context.Context, req travel.RouteRequest) (*travel.Leg, error) {
	if req.Origin.Coords == nil || req.Destination.Coords == nil {
		return nil, &travel.Error{
			Provider: ProviderName,
			Code:     "MISSING_COORDINATES",
			Message:  "routes api requires origin and destination coordinates",
			Err:      travel.ErrNoRouteFound,
		}
	}

	apiMode, err := travelModeOf(req.Mode)
	if err != nil {
		return nil, &travel.Error{
			Provider: ProviderName,
			Code:     "UNSUPPORTED_MODE",
			Message:  err.Error(),
			Err:      travel.ErrNoRouteFound,
		}
	}

	body, err := json.Marshal(computeRoutesRequest{
		Origin:      waypoint{Location: location{LatLng: latLng{Latitude: req.Origin.Coords.Lat, Longitude: req.Origin.Coords.Lng}}},
		Destination: waypoint{Location: location{LatLng: latLng{Latitude: req.Destination.Coords.Lat, Longitude: req.Destination.Coords.Lng}}},
		TravelMode:  apiMode,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/directions/v2:computeRoutes"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	c.logger.Debug().
		Str("mode", apiMode).
		Str("destination", req.Destination.Name).
		Msg("requesting route from routes api")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &travel.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routes api",
			Err:      travel.ErrProviderUnavailable,
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

	var routesResp computeRoutesResponse
	if err := json.Unmarshal(respBody, &routesResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(routesResp.Routes) == 0 {
		return nil, &travel.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found between the given places",
			Err:      travel.ErrNoRouteFound,
		}
	}

	route := routesResp.Routes[0]
	minutes, err := durationMinutes(route.Duration)
	if err != nil {
		return nil, fmt.Errorf("parsing duration %q: %w", route.Duration, err)
	}

	return &travel.Leg{
		DurationMin:    minutes,
		DistanceMeters: route.DistanceMeters,
	}, nil
}

// handleErrorResponse maps HTTP error statuses to domain errors.
func (c *Client) handleErrorResponse(statusCode int) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &travel.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "routes api rate limit exceeded",
			Err:      travel.ErrRateLimitExceeded,
		}
	case statusCode == http.StatusForbidden || statusCode == http.StatusUnauthorized:
		return &travel.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "routes api access denied - check API key configuration",
			Err:      travel.ErrProviderUnavailable,
		}
	case statusCode == http.StatusNotFound:
		return &travel.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found between the given places",
			Err:      travel.ErrNoRouteFound,
		}
	case statusCode >= 500:
		return &travel.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "routes api is temporarily unavailable",
			Err:      travel.ErrProviderUnavailable,
		}
	default:
		return &travel.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("routes api returned status %d", statusCode),
			Err:      travel.ErrProviderUnavailable,
		}
	}
}

// durationMinutes parses the protobuf-style duration string ("847s")
// into whole minutes, rounding up so short legs never read as zero.
func durationMinutes(d string) (int, error) {
	secs, err := strconv.Atoi(strings.TrimSuffix(d, "s"))
	if err != nil {
		return 0, err
	}
	minutes := (secs + 59) / 60
	if minutes < 1 {
		minutes = 1
	}
	return minutes, nil
}

type computeRoutesRequest struct {
	Origin      waypoint `json:"origin"`
	Destination waypoint `json:"destination"`
	TravelMode  string   `json:"travelMode"`
}

type waypoint struct {
	Location location `json:"location"`
}

type location struct {
	LatLng latLng `json:"latLng"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type computeRoutesResponse struct {
	Routes []struct {
		Duration       string `json:"duration"`
		DistanceMeters int    `json:"distanceMeters"`
	} `json:"routes"`
}
