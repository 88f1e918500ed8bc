package models

// RecommendRequest is the body of POST /v1/recommend.
type RecommendRequest struct {
	// TimeBucket is one of "≤30", "30-60", "60-120", ">120".
	TimeBucket string `json:"timeBucket"`

	// Budget is one of "low", "mid", "high".
	Budget string `json:"budget"`

	// Themes is a non-empty subset of relax/shopping/food/activity.
	Themes []string `json:"themes"`

	// FreeText carries optional unstructured wishes.
	FreeText string `json:"freeText,omitempty"`

	// Context optionally overrides the configured trip context.
	Context *ContextOverride `json:"context,omitempty"`
}

// ContextOverride lets a client pin the origin for one request.
type ContextOverride struct {
	LocationLabel string  `json:"locationLabel,omitempty"`
	City          string  `json:"city,omitempty"`
	Coords        *Point  `json:"coords,omitempty"`
	Weather       string  `json:"weather,omitempty"`
	TempC         float64 `json:"tempC,omitempty"`
}

// RecommendResponse is the body returned by POST /v1/recommend.
type RecommendResponse struct {
	SessionID string             `json:"sessionId"`
	Items     []RecommendedItem  `json:"items"`
	Meta      RecommendationMeta `json:"meta"`
}

// RecommendedItem is one ranked activity.
type RecommendedItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	PriceLevel     string   `json:"priceLevel"`
	Rating         float64  `json:"rating,omitempty"`
	ReviewCount    int      `json:"reviewCount,omitempty"`
	OpenNow        *bool    `json:"openNow,omitempty"`
	Coords         *Point   `json:"coords,omitempty"`
	Address        string   `json:"address,omitempty"`
	DistanceMeters int      `json:"distanceMeters,omitempty"`
	WalkTimeMin    int      `json:"walkTimeMin"`
	TransitTimeMin int      `json:"transitTimeMin"`
	DriveTimeMin   int      `json:"driveTimeMin"`
	TravelTimeMin  int      `json:"travelTimeMin"`
	ExpectedWait   int      `json:"expectedWaitMin"`
	ExpectedDwell  int      `json:"expectedDwellMin"`
	ThemeTags      []string `json:"themeTags,omitempty"`
	Score          float64  `json:"score"`
	Reason         string   `json:"reason"`
	DirectionsLink string   `json:"directionsLink,omitempty"`
	Source         string   `json:"source"`
}

// RecommendationMeta carries per-request pipeline diagnostics.
type RecommendationMeta struct {
	SourceCounts  map[string]int `json:"sourceCounts"`
	SearchedCount int            `json:"searchedCount"`
	FilteredCount int            `json:"filteredCount"`
	FallbackUsed  bool           `json:"fallbackUsed"`
	ProviderError bool           `json:"providerError"`
	LatencyMS     int64          `json:"latencyMs"`
}

// ContextResponse is the body of GET /v1/context.
type ContextResponse struct {
	LocationLabel string  `json:"locationLabel"`
	City          string  `json:"city"`
	Coords        Point   `json:"coords"`
	Weather       string  `json:"weather"`
	TempC         float64 `json:"tempC"`
}
