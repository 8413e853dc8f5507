// Package api exposes the layer views over a read-only HTTP surface.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/colormap"
	"github.com/sells-group/geolayer/internal/correlate"
	"github.com/sells-group/geolayer/internal/layers"
	"github.com/sells-group/geolayer/internal/ranking"
	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/spatial"
	"github.com/sells-group/geolayer/internal/store"
	"github.com/sells-group/geolayer/internal/weather"
)

// Service is the subset of layers.Service the handlers use.
type Service interface {
	Layers(ctx context.Context) ([]store.LayerInfo, error)
	Correlate(ctx context.Context, layerA, layerB, key string) (*correlate.Result, error)
	Rank(ctx context.Context, layer, key string, order ranking.Order, shown int) (*layers.RankingPage, error)
	Colors(ctx context.Context, layer, key, scheme string) (*colormap.Assignment, error)
	Weather(ctx context.Context, q weather.Query, g region.Granularity) (*layers.WeatherView, error)
	WeatherPoint(ctx context.Context, lat, lon float64) (*weather.PointForecast, error)
	CentroidStats() spatial.CacheStats
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	Schemes        *colormap.Registry
}

type handler struct {
	svc     Service
	schemes *colormap.Registry
	log     *zap.Logger
}

// NewRouter builds the HTTP routes.
func NewRouter(svc Service, opts Options) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Schemes == nil {
		opts.Schemes = colormap.Default
	}
	h := &handler{
		svc:     svc,
		schemes: opts.Schemes,
		log:     zap.L().With(zap.String("component", "api")),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.Timeout))
		r.Get("/layers", h.listLayers)
		r.Get("/layers/{layer}/ranking", h.ranking)
		r.Get("/layers/{layer}/colors", h.colors)
		r.Get("/correlation", h.correlation)
		r.Get("/colormaps", h.colormaps)
		r.Get("/weather", h.weather)
		r.Get("/weather/variables", h.weatherVariables)
		r.Get("/weather/point", h.weatherPoint)
	})
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
