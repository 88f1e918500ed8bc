package recommend

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/sparehour/sparehour/internal/search"
)

const tracerName = "github.com/sparehour/sparehour/internal/recommend"

// PipelineConfig holds the pipeline's collaborators and tuning.
type PipelineConfig struct {
	// Search discovers raw candidates. May be nil; the pipeline then
	// runs straight to the fallback catalog.
	Search search.Provider

	// Places fills in missing coordinates and ratings (optional).
	Places PlacesLookup

	// Travel resolves multi-modal travel times (required).
	Travel TravelTimes

	// Catalog overrides the fallback catalog (optional).
	Catalog []CatalogEntry

	// Logger for stage events.
	Logger zerolog.Logger

	// TravelBatchSize overrides the travel-filter batch size (optional).
	TravelBatchSize int

	// InterBatchPause overrides the pause between travel batches (optional).
	InterBatchPause time.Duration
}

// Pipeline turns preferences and a trip context into ranked
// recommendations. Safe for concurrent use; each run owns its items.
type Pipeline struct {
	searchProvider  search.Provider
	places          PlacesLookup
	travel          TravelTimes
	catalog         []CatalogEntry
	logger          zerolog.Logger
	tracer          trace.Tracer
	travelBatchSize int
	interBatchPause time.Duration
}

// NewPipeline creates a recommendation pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	batchSize := cfg.TravelBatchSize
	if batchSize <= 0 {
		batchSize = defaultTravelBatchSize
	}

	pause := cfg.InterBatchPause
	if pause <= 0 {
		pause = defaultInterBatchPause
	}

	return &Pipeline{
		searchProvider:  cfg.Search,
		places:          cfg.Places,
		travel:          cfg.Travel,
		catalog:         catalog,
		logger:          cfg.Logger,
		tracer:          otel.Tracer(tracerName),
		travelBatchSize: batchSize,
		interBatchPause: pause,
	}
}

// Run executes the full pipeline. Only malformed preferences fail; any
// environmental failure degrades toward the fallback catalog.
func (p *Pipeline) Run(ctx context.Context, prefs Preferences, trip TripContext) (*Result, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	ctx, span := p.tracer.Start(ctx, "recommend.Run", trace.WithAttributes(
		attribute.String("bucket", string(prefs.TimeBucket)),
		attribute.String("budget", string(prefs.Budget)),
	))
	defer span.End()

	meta := Meta{SourceCounts: make(map[string]int)}

	candidates, providerErr := p.searchCandidates(ctx, prefs, trip)
	meta.SearchedCount = len(candidates)
	meta.ProviderError = providerErr
	for _, c := range candidates {
		meta.SourceCounts[c.Source]++
	}

	items := p.normalize(ctx, candidates, trip)
	p.logger.Info().
		Int("candidates", len(candidates)).
		Int("normalized", len(items)).
		Msg("candidates normalized")

	items = p.filterByTravelTime(ctx, items, trip, prefs.TimeBucket)
	meta.FilteredCount = len(items)

	p.classifyTimeFitness(items, prefs.TimeBucket)
	p.scoreAndRank(items, prefs, trip)

	selected := p.selectDiverse(items)
	for i := range selected {
		selected[i].ReasonText = p.reasonText(&selected[i], prefs)
	}

	final, fallbackUsed := p.augment(selected, prefs, trip)
	meta.FallbackUsed = fallbackUsed
	if fallbackUsed {
		meta.SourceCounts[fallbackSource] += len(final) - len(selected)
	}

	meta.ElapsedMS = time.Since(started).Milliseconds()

	span.SetAttributes(
		attribute.Int("result_count", len(final)),
		attribute.Bool("fallback_used", fallbackUsed),
	)
	p.logger.Info().
		Int("result_count", len(final)).
		Bool("fallback_used", fallbackUsed).
		Int64("elapsed_ms", meta.ElapsedMS).
		Msg("recommendation pipeline complete")

	return &Result{Items: final, Meta: meta}, nil
}

// searchCandidates fans the query plan out against the search provider.
// Every query failure is soft; the pipeline continues with whatever the
// remaining queries returned.
func (p *Pipeline) searchCandidates(ctx context.Context, prefs Preferences, trip TripContext) ([]search.Candidate, bool) {
	if p.searchProvider == nil {
		return nil, false
	}

	themes := make([]string, len(prefs.Themes))
	for i, t := range prefs.Themes {
		themes[i] = string(t)
	}

	queries := search.BuildQueries(search.BuildInput{
		Themes:       themes,
		Budget:       string(prefs.Budget),
		Location:     trip.City,
		RadiusMeters: prefs.TimeBucket.Policy().RadiusMeters,
	})

	// Results are collected per query index so the merged order stays
	// deterministic regardless of completion order.
	perQuery := make([][]search.Candidate, len(queries))
	var failed atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			results, err := p.searchProvider.Search(gctx, q)
			if err != nil {
				failed.Store(true)
				p.logger.Warn().Err(err).Str("query", q.Text).Msg("search query failed")
				return nil
			}
			perQuery[i] = results
			return nil
		})
	}
	_ = g.Wait()

	var candidates []search.Candidate
	for _, results := range perQuery {
		candidates = append(candidates, results...)
	}

	return candidates, failed.Load()
}
