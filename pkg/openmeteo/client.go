// Package openmeteo fetches gridded forecasts from the Open-Meteo API.
package openmeteo

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/geolayer/internal/observability"
	"github.com/sells-group/geolayer/internal/resilience"
	"github.com/sells-group/geolayer/internal/spatial"
)

// DefaultBaseURL is the public forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Forecast horizons.
const (
	HourlyForecastDays = 3
	DailyForecastDays  = 7
	PointForecastDays  = 2
)

// Request selects one variable over a set of coordinates.
type Request struct {
	Variable string
	Points   []spatial.Point
	Daily    bool
}

func (r Request) coords() (lats, lons string) {
	la := make([]string, len(r.Points))
	lo := make([]string, len(r.Points))
	for i, p := range r.Points {
		la[i] = strconv.FormatFloat(p.Lat, 'f', -1, 64)
		lo[i] = strconv.FormatFloat(p.Lon, 'f', -1, 64)
	}
	return strings.Join(la, ","), strings.Join(lo, ",")
}

func (r Request) cacheKey() string {
	lats, lons := r.coords()
	return r.Variable + "|" + strconv.FormatBool(r.Daily) + "|" + lats + "|" + lons
}

func (r Request) params() url.Values {
	lats, lons := r.coords()
	params := url.Values{
		"latitude":  {lats},
		"longitude": {lons},
		"timezone":  {"auto"},
	}
	if r.Daily {
		params.Set("daily", r.Variable)
		params.Set("forecast_days", strconv.Itoa(DailyForecastDays))
	} else {
		params.Set("hourly", r.Variable)
		params.Set("forecast_days", strconv.Itoa(HourlyForecastDays))
	}
	return params
}

// PointRequest asks for several hourly variables at one coordinate, plus
// current conditions for the Current subset.
type PointRequest struct {
	Point     spatial.Point
	Variables []string
	Current   []string
}

func (r PointRequest) coords() (lat, lon string) {
	return strconv.FormatFloat(r.Point.Lat, 'f', -1, 64), strconv.FormatFloat(r.Point.Lon, 'f', -1, 64)
}

func (r PointRequest) cacheKey() string {
	lat, lon := r.coords()
	return "point|" + strings.Join(r.Variables, ",") + "|" + strings.Join(r.Current, ",") + "|" + lat + "|" + lon
}

func (r PointRequest) params() url.Values {
	lat, lon := r.coords()
	params := url.Values{
		"latitude":      {lat},
		"longitude":     {lon},
		"hourly":        {strings.Join(r.Variables, ",")},
		"timezone":      {"auto"},
		"forecast_days": {strconv.Itoa(PointForecastDays)},
	}
	if len(r.Current) > 0 {
		params.Set("current", strings.Join(r.Current, ","))
	}
	return params
}

// Client is an Open-Meteo forecast client with response caching, adaptive
// rate limiting and retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *adaptiveLimiter
	cache      *responseCache
	retry      resilience.RetryConfig
	metrics    *observability.Metrics
	clock      clockwork.Clock
	cacheSize  int
	cacheTTL   time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the forecast endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithRateLimit sets the initial requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = newAdaptiveLimiter(rate.Limit(rps), int(rps))
		}
	}
}

// WithCache sets the response cache capacity and TTL.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		if size > 0 {
			c.cacheSize = size
		}
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithClock sets the clock used for cache expiry and retry backoff.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithRetry sets the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithMetrics records request, cache and latency metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    DefaultBaseURL,
		limiter:    newAdaptiveLimiter(5, 5),
		retry:      resilience.DefaultRetryConfig(),
		clock:      clockwork.NewRealClock(),
		cacheSize:  64,
		cacheTTL:   DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = newResponseCache(c.cacheSize, c.cacheTTL, c.clock)
	if c.retry.Clock == nil {
		c.retry.Clock = c.clock
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("openmeteo", "forecast")
	}
	return c
}

// CacheStats returns response cache statistics.
func (c *Client) CacheStats() CacheStats {
	return c.cache.stats()
}

// Fetch returns the forecast for req, served from cache when fresh.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	if req.Variable == "" {
		return nil, eris.New("openmeteo: variable is required")
	}
	if len(req.Points) == 0 {
		return nil, eris.New("openmeteo: at least one point is required")
	}

	key := req.cacheKey()
	if resp := c.cache.get(key); resp != nil {
		c.observeCache("hit")
		return resp, nil
	}
	c.observeCache("miss")

	params := req.params()
	resp, err := resilience.Do(ctx, c.retry, func(ctx context.Context) (*Response, error) {
		return c.fetchOnce(ctx, params, req.Daily)
	})
	if err != nil {
		c.observeRequest("error")
		return nil, err
	}
	c.observeRequest("success")

	c.cache.put(key, resp)
	zap.L().Debug("openmeteo: forecast fetched",
		zap.String("variable", req.Variable),
		zap.Bool("daily", req.Daily),
		zap.Int("points", len(req.Points)),
		zap.Int("locations", len(resp.Locations)),
	)
	return resp, nil
}

// Point returns the hourly forecast and current conditions at one
// coordinate, served from cache when fresh.
func (c *Client) Point(ctx context.Context, req PointRequest) (*Location, error) {
	if len(req.Variables) == 0 {
		return nil, eris.New("openmeteo: at least one variable is required")
	}

	key := req.cacheKey()
	if resp := c.cache.get(key); resp != nil {
		c.observeCache("hit")
		return &resp.Locations[0], nil
	}
	c.observeCache("miss")

	params := req.params()
	resp, err := resilience.Do(ctx, c.retry, func(ctx context.Context) (*Response, error) {
		return c.fetchOnce(ctx, params, false)
	})
	if err == nil && len(resp.Locations) == 0 {
		err = eris.New("openmeteo: point response has no location")
	}
	if err != nil {
		c.observeRequest("error")
		return nil, err
	}
	c.observeRequest("success")

	c.cache.put(key, resp)
	return &resp.Locations[0], nil
}

func (c *Client) fetchOnce(ctx context.Context, params url.Values, daily bool) (*Response, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "openmeteo: rate limit")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "openmeteo: build request")
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(httpReq)
	if c.metrics != nil {
		c.metrics.WeatherAPIDuration.Observe(c.clock.Since(start).Seconds())
	}
	if err != nil {
		return nil, eris.Wrap(err, "openmeteo: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.onRateLimit()
	}
	if err := resilience.CheckStatus("openmeteo", resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "openmeteo: read body")
	}
	locs, err := decodeLocations(body)
	if err != nil {
		return nil, err
	}
	c.limiter.onSuccess()
	return &Response{Locations: locs, Daily: daily}, nil
}

func (c *Client) observeCache(result string) {
	if c.metrics != nil {
		c.metrics.WeatherCache.WithLabelValues(result).Inc()
	}
}

func (c *Client) observeRequest(outcome string) {
	if c.metrics != nil {
		c.metrics.WeatherRequests.WithLabelValues(outcome).Inc()
	}
}
