// Package main provides the entrypoint for the SpareHour API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/sparehour/sparehour/internal/api"
	"github.com/sparehour/sparehour/internal/api/middleware"
	"github.com/sparehour/sparehour/internal/config"
	"github.com/sparehour/sparehour/internal/places"
	"github.com/sparehour/sparehour/internal/provider/resilience"
	"github.com/sparehour/sparehour/internal/recommend"
	"github.com/sparehour/sparehour/internal/search"
	"github.com/sparehour/sparehour/internal/search/serpapi"
	"github.com/sparehour/sparehour/internal/telemetry"
	"github.com/sparehour/sparehour/internal/travel"
	"github.com/sparehour/sparehour/internal/travel/googledirections"
	"github.com/sparehour/sparehour/internal/travel/googleroutes"
	"github.com/sparehour/sparehour/internal/weather"
	"github.com/sparehour/sparehour/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "sparehour-api"

	// .env is optional; real deployments configure the environment.
	_ = godotenv.Load()

	cfg := config.FromEnv()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting SpareHour API")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// One registry tracks every outbound provider for /v1/ops/status.
	registry := resilience.NewRegistry()

	providerMetrics, err := middleware.NewProviderMetrics(serviceName)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Search provider (optional; fallback catalog serves without it)
	var searchProvider search.Provider
	if cfg.SerpAPIKey != "" {
		searchProvider = serpapi.NewClient(serpapi.ClientConfig{
			APIKey:   cfg.SerpAPIKey,
			Origin:   cfg.DefaultCoords,
			Registry: registry,
			Logger:   log,
		})
		log.Info().Msg("serpapi search provider initialized")
	} else {
		log.Warn().Msg("SERPAPI_KEY not set - serving fallback catalog only")
	}

	// Travel-time cascade: Routes API, then legacy Directions, then the
	// keyword estimator inside the service.
	var travelProviders []travel.Provider
	var placesLookup recommend.PlacesLookup
	if cfg.GoogleMapsAPIKey != "" {
		travelProviders = []travel.Provider{
			googleroutes.NewClient(googleroutes.ClientConfig{
				APIKey:   cfg.GoogleMapsAPIKey,
				Registry: registry,
				Logger:   log,
			}),
			googledirections.NewClient(googledirections.ClientConfig{
				APIKey:   cfg.GoogleMapsAPIKey,
				Registry: registry,
				Logger:   log,
			}),
		}
		placesLookup = places.NewLookup(places.LookupConfig{
			APIKey:   cfg.GoogleMapsAPIKey,
			CacheTTL: cfg.PlacesCacheTTL,
			Registry: registry,
			Metrics:  providerMetrics,
			Logger:   log,
		})
		log.Info().Msg("google maps clients initialized")
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - travel times fall back to estimates")
	}

	travelService := travel.NewService(travel.ServiceConfig{
		Providers: travelProviders,
		Logger:    log,
		CacheTTL:  cfg.TravelCacheTTL,
		Metrics:   providerMetrics,
	})

	// Weather (optional; config defaults apply without it)
	var weatherProvider weather.Provider
	if cfg.OpenWeatherMapAPIKey != "" {
		weatherProvider = openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:   cfg.OpenWeatherMapAPIKey,
			Registry: registry,
			Logger:   log,
		})
		log.Info().Msg("openweathermap provider initialized")
	}
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherProvider,
		Logger:   log,
		CacheTTL: cfg.WeatherCacheTTL,
		Fallback: cfg.DefaultWeather,
	})

	pipeline := recommend.NewPipeline(recommend.PipelineConfig{
		Search:          searchProvider,
		Places:          placesLookup,
		Travel:          travelService,
		Logger:          log,
		TravelBatchSize: cfg.TravelBatchSize,
		InterBatchPause: cfg.TravelBatchPause,
	})
	log.Info().Msg("recommendation pipeline initialized")

	defaultTrip := recommend.TripContext{
		LocationLabel: cfg.DefaultLocationLabel,
		City:          cfg.DefaultCity,
		Coords:        cfg.DefaultCoords,
		Weather:       cfg.DefaultWeather,
	}

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Pipeline:    pipeline,
		Weather:     weatherService,
		Registry:    registry,
		DefaultTrip: defaultTrip,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
