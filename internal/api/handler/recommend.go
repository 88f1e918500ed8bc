package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sparehour/sparehour/internal/api/models"
	"github.com/sparehour/sparehour/internal/api/response"
	"github.com/sparehour/sparehour/internal/geo"
	"github.com/sparehour/sparehour/internal/recommend"
	"github.com/sparehour/sparehour/internal/weather"
)

// requestTimeout bounds one full pipeline run.
const requestTimeout = 60 * time.Second

// Recommender runs the recommendation pipeline. Implemented by
// recommend.Pipeline.
type Recommender interface {
	Run(ctx context.Context, prefs recommend.Preferences, trip recommend.TripContext) (*recommend.Result, error)
}

// WeatherSource provides the current weather snapshot for coordinates.
// Implemented by weather.Service.
type WeatherSource interface {
	Current(ctx context.Context, lat, lng float64) weather.Snapshot
}

// RecommendHandler handles POST /v1/recommend and GET /v1/context.
type RecommendHandler struct {
	pipeline    Recommender
	weather     WeatherSource
	defaultTrip recommend.TripContext
}

// NewRecommendHandler creates a RecommendHandler. The weather source
// may be nil; the default trip's weather then applies.
func NewRecommendHandler(pipeline Recommender, weatherSource WeatherSource, defaultTrip recommend.TripContext) *RecommendHandler {
	return &RecommendHandler{
		pipeline:    pipeline,
		weather:     weatherSource,
		defaultTrip: defaultTrip,
	}
}

// Recommend handles POST /v1/recommend.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Request body must be valid JSON", nil)
		return
	}

	prefs := recommend.Preferences{
		TimeBucket: recommend.TimeBucket(req.TimeBucket),
		Budget:     recommend.PriceLevel(req.Budget),
		FreeText:   req.FreeText,
	}
	for _, theme := range req.Themes {
		prefs.Themes = append(prefs.Themes, recommend.Theme(theme))
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	trip := h.tripContext(ctx, req.Context)

	result, err := h.pipeline.Run(ctx, prefs, trip)
	if err != nil {
		response.BadRequest(w, r, "Invalid preferences", fieldErrors(err))
		return
	}

	resp := models.RecommendResponse{
		SessionID: "ses_" + uuid.NewString()[:22],
		Items:     make([]models.RecommendedItem, 0, len(result.Items)),
		Meta: models.RecommendationMeta{
			SourceCounts:  result.Meta.SourceCounts,
			SearchedCount: result.Meta.SearchedCount,
			FilteredCount: result.Meta.FilteredCount,
			FallbackUsed:  result.Meta.FallbackUsed,
			ProviderError: result.Meta.ProviderError,
			LatencyMS:     result.Meta.ElapsedMS,
		},
	}
	for i := range result.Items {
		resp.Items = append(resp.Items, toItemDTO(&result.Items[i]))
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// Context handles GET /v1/context.
func (h *RecommendHandler) Context(w http.ResponseWriter, r *http.Request) {
	trip := h.tripContext(r.Context(), nil)

	response.JSON(w, r, http.StatusOK, models.ContextResponse{
		LocationLabel: trip.LocationLabel,
		City:          trip.City,
		Coords:        models.Point{Lat: trip.Coords.Lat, Lng: trip.Coords.Lng},
		Weather:       string(trip.Weather.Condition),
		TempC:         trip.Weather.TempC,
	})
}

// tripContext builds the effective trip context: configured defaults,
// live weather when available, then per-request overrides on top.
func (h *RecommendHandler) tripContext(ctx context.Context, override *models.ContextOverride) recommend.TripContext {
	trip := h.defaultTrip

	if h.weather != nil {
		trip.Weather = h.weather.Current(ctx, trip.Coords.Lat, trip.Coords.Lng)
	}

	if override == nil {
		return trip
	}

	if override.LocationLabel != "" {
		trip.LocationLabel = override.LocationLabel
	}
	if override.City != "" {
		trip.City = override.City
	}
	if override.Coords != nil {
		trip.Coords = geo.Coordinates{Lat: override.Coords.Lat, Lng: override.Coords.Lng}
	}
	if override.Weather != "" {
		trip.Weather = weather.Snapshot{
			Condition: weather.Condition(override.Weather),
			TempC:     override.TempC,
		}
	}

	return trip
}

func toItemDTO(item *recommend.ActivityItem) models.RecommendedItem {
	dto := models.RecommendedItem{
		ID:             item.ID,
		Name:           item.Name,
		Category:       string(item.Category),
		PriceLevel:     string(item.PriceLevel),
		Rating:         item.Rating,
		ReviewCount:    item.ReviewCount,
		OpenNow:        item.OpenNow,
		Address:        item.Address,
		DistanceMeters: item.DistanceMeters,
		WalkTimeMin:    item.WalkTimeMin,
		TransitTimeMin: item.TransitTimeMin,
		DriveTimeMin:   item.DriveTimeMin,
		TravelTimeMin:  item.TravelTimeMin,
		ExpectedWait:   item.ExpectedWaitMin,
		ExpectedDwell:  item.ExpectedDwellMin,
		ThemeTags:      item.ThemeTags,
		Score:          item.TotalScore,
		Reason:         item.ReasonText,
		DirectionsLink: item.DirectionsLink,
		Source:         item.Source,
	}
	if item.Coords != nil {
		dto.Coords = &models.Point{Lat: item.Coords.Lat, Lng: item.Coords.Lng}
	}
	return dto
}

// fieldErrors maps preference validation sentinels onto field errors.
func fieldErrors(err error) []models.FieldError {
	switch {
	case errors.Is(err, recommend.ErrInvalidTimeBucket):
		return []models.FieldError{{Field: "timeBucket", Message: "must be one of ≤30, 30-60, 60-120, >120", Code: "invalid_value"}}
	case errors.Is(err, recommend.ErrInvalidBudget):
		return []models.FieldError{{Field: "budget", Message: "must be one of low, mid, high", Code: "invalid_value"}}
	case errors.Is(err, recommend.ErrNoThemes):
		return []models.FieldError{{Field: "themes", Message: "at least one theme is required", Code: "required"}}
	case errors.Is(err, recommend.ErrInvalidTheme):
		return []models.FieldError{{Field: "themes", Message: "must be a subset of relax, shopping, food, activity", Code: "invalid_value"}}
	default:
		return nil
	}
}
