package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/boundary"
	"github.com/sells-group/geolayer/internal/colormap"
	"github.com/sells-group/geolayer/internal/config"
	"github.com/sells-group/geolayer/internal/db"
	"github.com/sells-group/geolayer/internal/layers"
	"github.com/sells-group/geolayer/internal/observability"
	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/resilience"
	"github.com/sells-group/geolayer/internal/store"
	"github.com/sells-group/geolayer/internal/weather"
	"github.com/sells-group/geolayer/pkg/openmeteo"
)

// appEnv holds the dataset source and the layer service shared by every
// command.
type appEnv struct {
	Source  store.Source
	Service *layers.Service
	Colors  *colormap.Registry
	Weather *openmeteo.Client // nil when weather is disabled
	pool    db.Pool
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Source != nil {
		_ = e.Source.Close()
	}
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// initEnv opens the store, loads boundaries and builds the layer service.
// metrics may be nil. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string, metrics *observability.Metrics) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	src, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if m, ok := src.(migrator); ok {
		if err := m.Migrate(ctx); err != nil {
			_ = src.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}

	env := &appEnv{Source: src}
	if ps, ok := src.(*store.PostgresSource); ok {
		env.pool = ps.Pool()
	}

	collections, err := env.loadBoundaries(ctx)
	if err != nil {
		env.Close()
		return nil, err
	}

	var aliases map[string]string
	if cfg.Catalog.AliasesFile != "" {
		aliases, err = region.LoadAliases(cfg.Catalog.AliasesFile)
		if err != nil {
			env.Close()
			return nil, eris.Wrap(err, "load aliases")
		}
	}

	env.Colors, err = colormap.NewRegistry(cfg.Colors.Schemes, cfg.Colors.DefaultScheme)
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "color schemes")
	}

	var forecaster weather.Forecaster
	if cfg.Weather.Enabled {
		env.Weather = newWeatherClient(cfg.Weather, metrics)
		forecaster = env.Weather
	} else {
		zap.L().Debug("weather disabled, weather layers unavailable")
	}

	env.Service = layers.New(src, collections, forecaster, metrics, layers.Config{
		Catalog:  cfg.Catalog.Options(aliases),
		Colors:   env.Colors,
		PageSize: cfg.Ranking.PageSize,
	})
	return env, nil
}

func (e *appEnv) loadBoundaries(ctx context.Context) ([]*boundary.Collection, error) {
	if len(cfg.Boundaries) == 0 {
		zap.L().Warn("no boundaries configured, regions will be empty")
		return nil, nil
	}
	collections, err := boundary.LoadAll(ctx, cfg.Boundaries, e.pool)
	if err != nil {
		return nil, eris.Wrap(err, "load boundaries")
	}
	return collections, nil
}

// reloadBoundaries re-reads the configured boundaries into the service.
func (e *appEnv) reloadBoundaries(ctx context.Context) error {
	collections, err := e.loadBoundaries(ctx)
	if err != nil {
		return err
	}
	e.Service.SetBoundaries(collections...)
	return nil
}

func newWeatherClient(wc config.WeatherConfig, metrics *observability.Metrics) *openmeteo.Client {
	timeout := time.Duration(wc.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return openmeteo.NewClient(
		openmeteo.WithBaseURL(wc.BaseURL),
		openmeteo.WithHTTPClient(&http.Client{Timeout: timeout}),
		openmeteo.WithRateLimit(wc.RateLimit),
		openmeteo.WithCache(wc.CacheSize, wc.CacheTTL),
		openmeteo.WithRetry(resilience.FromRetryConfig(wc.Retry.MaxAttempts, wc.Retry.InitialBackoffMs, wc.Retry.MaxBackoffMs)),
		openmeteo.WithMetrics(metrics),
	)
}
