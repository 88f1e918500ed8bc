// Package search defines the candidate-discovery contract: providers
// turn localized text queries into raw place candidates that the
// recommendation pipeline normalizes.
package search

import (
	"context"
	"errors"

	"github.com/sparehour/sparehour/internal/geo"
)

// Sentinel errors for candidate search.
var (
	// ErrProviderUnavailable indicates the provider is down or its circuit is open.
	ErrProviderUnavailable = errors.New("search provider unavailable")
	// ErrRateLimitExceeded indicates the provider quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Query is one localized search against a provider.
type Query struct {
	// Text is the full query string, location qualifier included.
	Text string

	// Locale is a BCP-47 tag such as "es-ES" or "en".
	Locale string

	// RadiusMeters bounds the search around the origin.
	RadiusMeters int
}

// Candidate is one raw search hit before normalization.
type Candidate struct {
	Title       string
	Rating      float64
	ReviewCount int
	PlaceType   string
	Coords      *geo.Coordinates
	OpenState   string
	Address     string
	Description string
	PlaceID     string

	// Source names the provider that returned the candidate.
	Source string
}

// Provider turns a query into candidates.
type Provider interface {
	Search(ctx context.Context, q Query) ([]Candidate, error)
	Name() string
}

// Error provides detailed error information from a search provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}
