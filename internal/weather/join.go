package weather

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/dataset"
	"github.com/sells-group/geolayer/internal/observability"
	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/spatial"
	"github.com/sells-group/geolayer/pkg/openmeteo"
)

// ErrInvalidQuery marks a query naming an unknown variable, an index outside
// the forecast or a bad grid resolution.
var ErrInvalidQuery = errors.New("invalid weather query")

// Forecaster fetches gridded forecasts.
type Forecaster interface {
	Fetch(ctx context.Context, req openmeteo.Request) (*openmeteo.Response, error)
}

// Query selects a variable and time slice.
type Query struct {
	Variable   string
	Index      int
	Daily      bool
	Resolution float64
}

// Result is a weather variable projected onto regions.
type Result struct {
	Variable Variable         `json:"variable"`
	Key      string           `json:"key"`
	Daily    bool             `json:"daily"`
	Times    []string         `json:"times"`
	Samples  int              `json:"sample_count"`
	Store    *dataset.Store   `json:"-"`
	Missing  []string         `json:"missing_geometry,omitempty"`
	Points   []spatial.Sample `json:"points"`
}

// Joiner projects forecasts onto region centroids.
type Joiner struct {
	forecaster Forecaster
	index      *spatial.Index
	metrics    *observability.Metrics
	log        *zap.Logger
}

// NewJoiner creates a Joiner. metrics may be nil.
func NewJoiner(f Forecaster, index *spatial.Index, metrics *observability.Metrics) *Joiner {
	return &Joiner{
		forecaster: f,
		index:      index,
		metrics:    metrics,
		log:        zap.L().With(zap.String("component", "weather")),
	}
}

// Join fetches q's variable over the grid and assigns each region in codes
// the value of the nearest sample that has one. The returned store has the single time key
// strconv.Itoa(q.Index).
func (j *Joiner) Join(ctx context.Context, q Query, codes []string, g region.Granularity) (*Result, error) {
	if q.Variable == "" {
		q.Variable = DefaultVariable
	}
	v, ok := Lookup(q.Variable)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidQuery, "weather: unknown variable %q", q.Variable)
	}
	if q.Index < 0 {
		return nil, eris.Wrapf(ErrInvalidQuery, "weather: negative time index %d", q.Index)
	}
	if q.Resolution == 0 {
		q.Resolution = DefaultResolution
	}
	grid, err := Grid(q.Resolution)
	if err != nil {
		return nil, err
	}

	name := v.ID
	if q.Daily {
		name = v.Daily
	}
	resp, err := j.forecaster.Fetch(ctx, openmeteo.Request{Variable: name, Points: grid, Daily: q.Daily})
	if err != nil {
		return nil, eris.Wrapf(err, "weather: fetch %s", name)
	}
	if steps := len(resp.Times()); q.Index >= steps {
		return nil, eris.Wrapf(ErrInvalidQuery, "weather: time index %d is beyond the %d-step forecast", q.Index, steps)
	}
	samples := valued(resp.Samples(q.Index, v.Columns(q.Daily)...))

	start := time.Now()
	located, missing := j.index.Locate(codes)
	assigned := spatial.Assign(samples, located)
	elapsed := time.Since(start)
	if j.metrics != nil {
		j.metrics.SpatialJoinDuration.Observe(elapsed.Seconds())
		j.metrics.SpatialJoinRegions.Observe(float64(len(located)))
	}
	j.log.Debug("spatial join",
		zap.String("variable", v.ID),
		zap.Int("regions", len(located)),
		zap.Int("samples", len(samples)),
		zap.Duration("elapsed", elapsed),
	)

	key := strconv.Itoa(q.Index)
	return &Result{
		Variable: v,
		Key:      key,
		Daily:    q.Daily,
		Times:    resp.Times(),
		Samples:  len(samples),
		Store: spatial.ToStore(assigned, key,
			dataset.WithGranularity(g),
			dataset.WithName(v.ID, v.Name),
		),
		Missing: missing,
		Points:  samples,
	}, nil
}

// valued drops samples without a value, in place.
func valued(samples []spatial.Sample) []spatial.Sample {
	out := samples[:0]
	for _, s := range samples {
		if s.Value != nil {
			out = append(out, s)
		}
	}
	return out
}
