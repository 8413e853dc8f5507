// Package correlate scores the relationship between two region-indexed
// series and fits regression curves through their matched pairs.
package correlate

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sells-group/geolayer/internal/dataset"
	"github.com/sells-group/geolayer/internal/region"
)

// ErrInsufficientData is returned when fewer than two regions match or
// either matched series has no variance.
var ErrInsufficientData = errors.New("insufficient data")

// Strength classes of |r|.
const (
	Weak       = "weak"
	Moderate   = "moderate"
	Strong     = "strong"
	VeryStrong = "very-strong"
)

// Directions of r.
const (
	Positive = "positive"
	Negative = "negative"
)

const defaultCurveSamples = 50

// Input is one side of a comparison.
type Input struct {
	Store *dataset.Store
	Label string
}

func (in Input) label() string {
	if in.Label != "" {
		return in.Label
	}
	if in.Store.Label() != "" {
		return in.Store.Label()
	}
	return in.Store.Name()
}

// PlotPoint is one matched region in scatter space.
type PlotPoint struct {
	Code  string  `json:"code"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Result is a complete correlation outcome.
type Result struct {
	RunID              string         `json:"run_id"`
	Key                string         `json:"key"`
	XLabel             string         `json:"x_label"`
	YLabel             string         `json:"y_label"`
	Score              float64        `json:"score"`
	PValue             *float64       `json:"p_value,omitempty"`
	Strength           string         `json:"strength"`
	Direction          string         `json:"direction"`
	MatchedRegionCount int            `json:"matched_region_count"`
	Regressions        map[Model]*Fit `json:"regressions"`
	PlotPoints         []PlotPoint    `json:"plot_points"`
	Summary            string         `json:"summary"`
}

// Namer resolves region codes to display names for plot labels.
type Namer interface {
	DisplayName(code string) string
}

// Engine runs correlations. It holds no per-call state.
type Engine struct {
	names        Namer
	curveSamples int
	log          *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithNamer labels plot points with display names.
func WithNamer(n Namer) Option {
	return func(e *Engine) { e.names = n }
}

// WithCurveSamples sets how many points each fitted curve is sampled at.
func WithCurveSamples(n int) Option {
	return func(e *Engine) {
		if n >= 2 {
			e.curveSamples = n
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		curveSamples: defaultCurveSamples,
		log:          zap.L().With(zap.String("component", "correlate")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Correlate compares a and b at key. An empty key selects the latest key of
// the first store that has a time dimension.
// Incompatible granularities return region.ErrIncompatibleGranularity; too
// few matched pairs or a constant series return ErrInsufficientData.
func (e *Engine) Correlate(a, b Input, key string) (*Result, error) {
	if a.Store == nil || b.Store == nil {
		return nil, eris.New("correlate: both stores are required")
	}
	if err := region.CheckCompatible(a.Store.Granularity(), b.Store.Granularity()); err != nil {
		return nil, err
	}
	if key == "" {
		key = defaultKey(a.Store, b.Store)
	}

	points := e.match(a.Store, b.Store, key)
	if len(points) < 2 {
		return nil, eris.Wrapf(ErrInsufficientData, "correlate: %d matched regions at key %q", len(points), key)
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	if constant(xs) || constant(ys) {
		return nil, eris.Wrapf(ErrInsufficientData, "correlate: constant series at key %q", key)
	}

	r, err := stats.Correlation(xs, ys)
	if err != nil {
		return nil, eris.Wrap(ErrInsufficientData, "correlate: "+err.Error())
	}
	r = math.Max(-1, math.Min(1, r))

	res := &Result{
		RunID:              uuid.NewString(),
		Key:                key,
		XLabel:             a.label(),
		YLabel:             b.label(),
		Score:              r,
		PValue:             pValue(r, len(points)),
		Strength:           classify(r),
		Direction:          direction(r),
		MatchedRegionCount: len(points),
		Regressions:        e.fitAll(xs, ys),
		PlotPoints:         points,
	}
	res.Summary = summarize(res)

	e.log.Debug("correlation computed",
		zap.String("run_id", res.RunID),
		zap.String("key", key),
		zap.Int("matched", res.MatchedRegionCount),
		zap.Float64("score", r),
		zap.Int("fits", len(res.Regressions)),
	)
	return res, nil
}

func defaultKey(stores ...*dataset.Store) string {
	for _, s := range stores {
		if !s.Timeless() && s.LatestKey() != "" {
			return s.LatestKey()
		}
	}
	return stores[0].LatestKey()
}

// match pairs values of a and b at key in a's code order. Codes missing on
// either side or holding non-finite values are skipped.
func (e *Engine) match(a, b *dataset.Store, key string) []PlotPoint {
	var out []PlotPoint
	for _, code := range a.Codes() {
		x, ok := a.Get(code, key)
		if !ok || !finite(x) {
			continue
		}
		y, ok := b.Get(code, key)
		if !ok || !finite(y) {
			continue
		}
		label := code
		if e.names != nil {
			label = e.names.DisplayName(code)
		}
		out = append(out, PlotPoint{Code: code, Label: label, X: x, Y: y})
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// constant reports whether the population variance is zero up to rounding
// error in the mean. The bound scales with the values, so small-magnitude
// series with real spread are kept.
func constant(xs []float64) bool {
	variance, err := stats.PopulationVariance(xs)
	if err != nil {
		return true
	}
	mean, _ := stats.Mean(xs)
	return variance <= 1e-20*mean*mean
}

func classify(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs < 0.3:
		return Weak
	case abs < 0.7:
		return Moderate
	case abs < 0.9:
		return Strong
	default:
		return VeryStrong
	}
}

func direction(r float64) string {
	if r >= 0 {
		return Positive
	}
	return Negative
}

// pValue is the two-sided Student t significance of r. Undefined for fewer
// than three pairs or a perfect correlation.
func pValue(r float64, n int) *float64 {
	if n < 3 || 1-math.Abs(r) < 1e-12 {
		return nil
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	return &p
}
