// Package layers resolves stored layers into value stores and runs the
// correlation, ranking, coloring and weather views over them.
package layers

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geolayer/internal/boundary"
	"github.com/sells-group/geolayer/internal/colormap"
	"github.com/sells-group/geolayer/internal/correlate"
	"github.com/sells-group/geolayer/internal/dataset"
	"github.com/sells-group/geolayer/internal/observability"
	"github.com/sells-group/geolayer/internal/ranking"
	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/spatial"
	"github.com/sells-group/geolayer/internal/store"
	"github.com/sells-group/geolayer/internal/weather"
)

// ErrWeatherUnavailable is returned for weather views when no forecaster
// is configured.
var ErrWeatherUnavailable = errors.New("weather is not configured")

// WeatherPrefix marks a layer name as a live weather variable.
const WeatherPrefix = "weather:"

// Config holds service tuning.
type Config struct {
	Catalog      region.Options
	Colors       *colormap.Registry
	PageSize     int
	CurveSamples int
}

// Service is safe for concurrent use. Boundaries can be replaced at runtime
// with SetBoundaries.
type Service struct {
	source  store.Source
	catalog atomic.Pointer[region.Catalog]
	index   *spatial.Index
	engine  *correlate.Engine
	colors  *colormap.Registry
	joiner  *weather.Joiner
	points  weather.PointSource
	metrics *observability.Metrics
	cfg     Config
	log     *zap.Logger
}

// New creates a Service. forecaster and metrics may be nil; without a
// forecaster weather layers are unavailable. Point views need a forecaster
// that is also a weather.PointSource.
func New(src store.Source, collections []*boundary.Collection, forecaster weather.Forecaster, metrics *observability.Metrics, cfg Config) *Service {
	if cfg.Colors == nil {
		cfg.Colors = colormap.Default
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}

	s := &Service{
		source:  src,
		colors:  cfg.Colors,
		metrics: metrics,
		cfg:     cfg,
		log:     zap.L().With(zap.String("component", "layers")),
	}
	cat := region.NewCatalog(cfg.Catalog, collections...)
	s.catalog.Store(cat)
	s.index = spatial.NewIndex(cat)
	s.engine = correlate.NewEngine(correlate.WithNamer(namer{s}), correlate.WithCurveSamples(cfg.CurveSamples))
	if forecaster != nil {
		s.joiner = weather.NewJoiner(forecaster, s.index, metrics)
		s.points, _ = forecaster.(weather.PointSource)
	}
	return s
}

// namer reads display names from the current catalog.
type namer struct{ s *Service }

func (n namer) DisplayName(code string) string { return n.s.Catalog().DisplayName(code) }

// Catalog returns the current region catalog.
func (s *Service) Catalog() *region.Catalog {
	return s.catalog.Load()
}

// SetBoundaries replaces the boundary collections and drops cached
// centroids.
func (s *Service) SetBoundaries(collections ...*boundary.Collection) {
	cat := region.NewCatalog(s.cfg.Catalog, collections...)
	s.catalog.Store(cat)
	s.index.Rebind(cat)
	s.log.Info("boundaries replaced", zap.Int("collections", len(collections)))
}

// CentroidStats reports centroid cache statistics.
func (s *Service) CentroidStats() spatial.CacheStats {
	return s.index.Stats()
}

// Layers lists stored layers.
func (s *Service) Layers(ctx context.Context) ([]store.LayerInfo, error) {
	return s.source.List(ctx)
}

// Resolve loads a layer as a store with canonical region codes. A name like
// "weather:temperature_2m@6" resolves to a timeless global snapshot of that
// variable at forecast hour 6, and "weather:temperature_2m@6#province" to a
// province snapshot.
func (s *Service) Resolve(ctx context.Context, layer string) (*dataset.Store, error) {
	return s.resolve(ctx, layer, region.Global)
}

// resolve is Resolve with the granularity used for weather layers that do
// not name one.
func (s *Service) resolve(ctx context.Context, layer string, fallback region.Granularity) (*dataset.Store, error) {
	if v, ok := strings.CutPrefix(layer, WeatherPrefix); ok {
		return s.resolveWeather(ctx, v, fallback)
	}

	d, err := s.source.Load(ctx, layer)
	if err != nil {
		return nil, err
	}
	cat := s.Catalog()
	return dataset.FromDescriptor(d,
		dataset.WithNormalizer(cat.Normalize),
		dataset.WithGranularity(cat.Classify(d)),
	), nil
}

// Correlate resolves both layers and correlates them at key. An empty key
// uses the latest key of the first layer with a time dimension. A weather
// layer without a granularity suffix is joined at the other layer's
// granularity.
func (s *Service) Correlate(ctx context.Context, layerA, layerB, key string) (*correlate.Result, error) {
	a, b, err := s.resolvePair(ctx, layerA, layerB)
	if err != nil {
		s.observeCorrelation("error")
		return nil, err
	}

	res, err := s.engine.Correlate(
		correlate.Input{Store: a, Label: labelOf(a, layerA)},
		correlate.Input{Store: b, Label: labelOf(b, layerB)},
		key,
	)
	switch {
	case errors.Is(err, correlate.ErrInsufficientData):
		s.observeCorrelation("insufficient_data")
	case errors.Is(err, region.ErrIncompatibleGranularity):
		s.observeCorrelation("incompatible_granularity")
	case err != nil:
		s.observeCorrelation("error")
	default:
		s.observeCorrelation("ok")
		s.log.Info("layers correlated",
			zap.String("run_id", res.RunID),
			zap.String("a", layerA),
			zap.String("b", layerB),
			zap.String("key", res.Key),
			zap.Float64("score", res.Score),
		)
	}
	return res, err
}

// resolvePair resolves two layers concurrently, except that a weather layer
// following the other layer's granularity waits for that layer.
func (s *Service) resolvePair(ctx context.Context, layerA, layerB string) (a, b *dataset.Store, err error) {
	resolve := func(ctx context.Context, layer string, g region.Granularity) (*dataset.Store, error) {
		st, err := s.resolve(ctx, layer, g)
		return st, eris.Wrapf(err, "layers: resolve %s", layer)
	}

	switch {
	case followsOther(layerA) && !isWeather(layerB):
		if b, err = resolve(ctx, layerB, region.Global); err != nil {
			return nil, nil, err
		}
		a, err = resolve(ctx, layerA, b.Granularity())
		return a, b, err
	case followsOther(layerB) && !isWeather(layerA):
		if a, err = resolve(ctx, layerA, region.Global); err != nil {
			return nil, nil, err
		}
		b, err = resolve(ctx, layerB, a.Granularity())
		return a, b, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = resolve(gctx, layerA, region.Global)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = resolve(gctx, layerB, region.Global)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func labelOf(s *dataset.Store, layer string) string {
	if s.Label() != "" {
		return s.Label()
	}
	return layer
}

// RankingPage is one page of a ranking view.
type RankingPage struct {
	Layer     string          `json:"layer"`
	Key       string          `json:"key"`
	Order     ranking.Order   `json:"order"`
	Entries   []ranking.Entry `json:"entries"`
	Total     int             `json:"total"`
	Remaining int             `json:"remaining"`
}

// Rank returns the ranking of layer at key with shown entries already
// visible plus one more page.
func (s *Service) Rank(ctx context.Context, layer, key string, order ranking.Order, shown int) (*RankingPage, error) {
	st, err := s.Resolve(ctx, layer)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = st.LatestKey()
	}
	all := ranking.Rank(st, key, order, s.Catalog())
	page, remaining := ranking.Page(all, shown, s.cfg.PageSize)
	s.observeView("ranking")
	return &RankingPage{
		Layer:     layer,
		Key:       key,
		Order:     order,
		Entries:   page,
		Total:     len(all),
		Remaining: remaining,
	}, nil
}

// Colors assigns a color to every region of the layer's granularity.
func (s *Service) Colors(ctx context.Context, layer, key, scheme string) (*colormap.Assignment, error) {
	st, err := s.Resolve(ctx, layer)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = st.LatestKey()
	}
	s.observeView("colors")
	return s.colors.Assign(st, key, s.regionCodes(st.Granularity()), scheme), nil
}

// WeatherView is a weather variable joined onto regions with its colors.
type WeatherView struct {
	*weather.Result
	Colors *colormap.Assignment `json:"colors"`
}

// Weather joins a weather variable onto the regions of granularity g and
// colors them against the variable's display range.
func (s *Service) Weather(ctx context.Context, q weather.Query, g region.Granularity) (*WeatherView, error) {
	if s.joiner == nil {
		return nil, eris.Wrap(ErrWeatherUnavailable, "layers")
	}
	res, err := s.joiner.Join(ctx, q, s.regionCodes(g), g)
	if err != nil {
		return nil, err
	}
	s.observeView("weather")
	v := res.Variable
	return &WeatherView{
		Result: res,
		Colors: s.colors.AssignRange(res.Store, res.Key, s.regionCodes(g), v.Scheme, v.Min, v.Max),
	}, nil
}

// WeatherPoint returns the forecast of every weather variable at lat/lon.
func (s *Service) WeatherPoint(ctx context.Context, lat, lon float64) (*weather.PointForecast, error) {
	if s.points == nil {
		return nil, eris.Wrap(ErrWeatherUnavailable, "layers")
	}
	pf, err := weather.FetchPoint(ctx, s.points, lat, lon)
	if err != nil {
		return nil, err
	}
	s.observeView("weather_point")
	return pf, nil
}

func (s *Service) resolveWeather(ctx context.Context, name string, fallback region.Granularity) (*dataset.Store, error) {
	if s.joiner == nil {
		return nil, eris.Wrap(ErrWeatherUnavailable, "layers")
	}
	wl, err := parseWeatherLayer(name)
	if err != nil {
		return nil, err
	}
	g := wl.granularity
	if g == "" {
		g = fallback
	}
	res, err := s.joiner.Join(ctx, weather.Query{Variable: wl.variable, Index: wl.hour}, s.regionCodes(g), g)
	if err != nil {
		return nil, err
	}
	return snapshot(res.Store, res.Key), nil
}

// snapshot re-keys a single-key store as timeless so it pairs with any key.
func snapshot(st *dataset.Store, key string) *dataset.Store {
	values := make(map[string]map[string]*float64, st.Len())
	for code, v := range st.Slice(key) {
		values[code] = map[string]*float64{dataset.AllKey: &v}
	}
	return dataset.New(values,
		dataset.WithGranularity(st.Granularity()),
		dataset.WithName(st.Name(), st.Label()),
	)
}

func (s *Service) regionCodes(g region.Granularity) []string {
	regions := s.Catalog().Regions(g)
	codes := make([]string, len(regions))
	for i, r := range regions {
		codes[i] = r.Code
	}
	return codes
}

func (s *Service) observeCorrelation(outcome string) {
	if s.metrics != nil {
		s.metrics.Correlations.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) observeView(view string) {
	if s.metrics != nil {
		s.metrics.Views.WithLabelValues(view).Inc()
	}
}
