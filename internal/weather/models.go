// Package weather supplies the current conditions used to build the
// trip context. Conditions collapse onto a closed set so downstream
// scoring stays deterministic.
package weather

import (
	"context"
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
)

// Condition is the closed weather condition set.
type Condition string

const (
	ConditionSunny   Condition = "sunny"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionWindy   Condition = "windy"
	ConditionUnknown Condition = "unknown"
)

// IsFair reports whether the condition favors outdoor activities.
func (c Condition) IsFair() bool {
	return c == ConditionSunny || c == ConditionCloudy
}

// Snapshot is the current weather at a location.
type Snapshot struct {
	Condition   Condition
	TempC       float64
	Description string
	FetchedAt   time.Time
}

// Provider fetches current weather for coordinates.
type Provider interface {
	Current(ctx context.Context, lat, lng float64) (*Snapshot, error)
	Name() string
}
