// Package places resolves missing candidate details through the Google
// Places Text Search API. Lookups are best-effort: a failure yields an
// empty result, never an error that stops normalization.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/sparehour/sparehour/internal/geo"
	"github.com/sparehour/sparehour/internal/provider/resilience"
)

const (
	// ProviderName identifies this lookup provider.
	ProviderName = "google-places"

	// DefaultBaseURL is the Places API base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultCacheTTL is how long lookups are cached.
	DefaultCacheTTL = 30 * time.Minute
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Metrics records lookup durations and cache outcomes. Satisfied by
// middleware.ProviderMetrics.
type Metrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// Details is the resolved place information. The zero value means the
// lookup found nothing.
type Details struct {
	PlaceID     string
	Name        string
	Coords      *geo.Coordinates
	Address     string
	Rating      float64
	ReviewCount int
	PriceLevel  int // 0-4 per the Places API, -1 when absent
}

// Found reports whether the lookup resolved anything useful.
func (d Details) Found() bool {
	return d.PlaceID != "" || d.Coords != nil
}

// LookupConfig holds configuration for the lookup client.
type LookupConfig struct {
	// APIKey is the Google Maps Platform API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 5s).
	Timeout time.Duration

	// CacheTTL is how long lookups are cached (optional, defaults to 30m).
	CacheTTL time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Metrics records lookup durations and cache outcomes (optional).
	Metrics Metrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Lookup is a cached Places Text Search client.
type Lookup struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
	cache      *gocache.Cache
	metrics    Metrics
}

// NewLookup creates a new lookup client.
func NewLookup(cfg LookupConfig) *Lookup {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = DefaultCacheTTL
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

	return &Lookup{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		metrics:    cfg.Metrics,
	}
}

// Find resolves a place by name within a locality. Returns the zero
// Details on any failure.
func (l *Lookup) Find(ctx context.Context, name, locality string) Details {
	if name == "" || l.apiKey == "" {
		return Details{}
	}

	cacheKey := strings.ToLower(name + "|" + locality)
	if cached, ok := l.cache.Get(cacheKey); ok {
		if l.metrics != nil {
			l.metrics.RecordCacheHit(ProviderName, "textsearch")
		}
		return cached.(Details)
	}
	if l.metrics != nil {
		l.metrics.RecordCacheMiss(ProviderName, "textsearch")
	}

	details := l.fetch(ctx, name, locality)
	// Negative results are cached too, to avoid re-querying misses.
	l.cache.Set(cacheKey, details, gocache.DefaultExpiration)
	return details
}

func (l *Lookup) fetch(ctx context.Context, name, locality string) Details {
	params := url.Values{}
	params.Set("query", strings.TrimSpace(name+" "+locality))
	params.Set("key", l.apiKey)

	reqURL := fmt.Sprintf("%s/maps/api/place/textsearch/json?%s", l.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return Details{}
	}

	started := time.Now()
	resp, err := l.httpClient.Do(httpReq)
	if l.metrics != nil {
		l.metrics.RecordRequest(ProviderName, "textsearch", time.Since(started), err)
	}
	if err != nil {
		l.logger.Debug().Err(err).Str("place", name).Msg("places lookup failed")
		return Details{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Debug().Int("status", resp.StatusCode).Str("place", name).Msg("places lookup non-ok status")
		return Details{}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Details{}
	}

	var placesResp textSearchResponse
	if err := json.Unmarshal(respBody, &placesResp); err != nil {
		l.logger.Debug().Err(err).Str("place", name).Msg("places response malformed")
		return Details{}
	}

	if placesResp.Status != "OK" || len(placesResp.Results) == 0 {
		return Details{}
	}

	first := placesResp.Results[0]
	details := Details{
		PlaceID:     first.PlaceID,
		Name:        first.Name,
		Address:     first.FormattedAddress,
		Rating:      first.Rating,
		ReviewCount: first.UserRatingsTotal,
		PriceLevel:  -1,
	}
	if first.PriceLevel != nil {
		details.PriceLevel = *first.PriceLevel
	}
	if first.Geometry != nil {
		details.Coords = &geo.Coordinates{
			Lat: first.Geometry.Location.Lat,
			Lng: first.Geometry.Location.Lng,
		}
	}

	l.logger.Debug().
		Str("place", name).
		Str("place_id", details.PlaceID).
		Msg("places lookup resolved")

	return details
}

// CacheStats reports the number of cached lookups.
func (l *Lookup) CacheStats() int {
	return l.cache.ItemCount()
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string  `json:"place_id"`
		Name             string  `json:"name"`
		FormattedAddress string  `json:"formatted_address"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		PriceLevel       *int    `json:"price_level"`
		Geometry         *struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}
