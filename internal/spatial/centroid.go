// Package spatial derives representative points for region boundaries and
// projects scalar samples onto regions by nearest neighbor.
package spatial

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/geolayer/internal/boundary"
)

// ErrMissingGeometry is returned when a region has no boundary feature.
// Callers degrade such regions to "no data".
var ErrMissingGeometry = errors.New("missing geometry")

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Located is a region code with its representative point.
type Located struct {
	Code string `json:"code"`
	Point
}

// FeatureSource resolves canonical region codes to boundary features.
type FeatureSource interface {
	Feature(code string) (boundary.Feature, bool)
}

// CacheStats reports centroid cache effectiveness.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

type centroidSet struct {
	src    FeatureSource
	points sync.Map // code -> Point
	size   atomic.Int64
}

// Index caches one centroid per region for the lifetime of its geometry
// set. Concurrent first lookups may compute the same centroid twice; only
// the first stored value is kept.
type Index struct {
	set    atomic.Pointer[centroidSet]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewIndex creates an Index over the given features.
func NewIndex(src FeatureSource) *Index {
	x := &Index{}
	x.set.Store(&centroidSet{src: src})
	return x
}

// Rebind points the index at a new geometry set and drops every cached
// centroid.
func (x *Index) Rebind(src FeatureSource) {
	x.set.Store(&centroidSet{src: src})
}

// CentroidOf returns the bounding-box center of the region's boundary.
// Malformed or empty geometry yields (0,0); an unknown region yields
// ErrMissingGeometry.
func (x *Index) CentroidOf(code string) (Point, error) {
	set := x.set.Load()
	if p, ok := set.points.Load(code); ok {
		x.hits.Add(1)
		return p.(Point), nil
	}
	x.misses.Add(1)

	f, ok := set.src.Feature(code)
	if !ok {
		return Point{}, eris.Wrapf(ErrMissingGeometry, "spatial: no boundary for region %q", code)
	}
	p, loaded := set.points.LoadOrStore(code, BBoxCenter(f.Geometry))
	if !loaded {
		set.size.Add(1)
	}
	return p.(Point), nil
}

// Locate resolves centroids for codes in order. Codes without a boundary
// are returned separately.
func (x *Index) Locate(codes []string) (located []Located, missing []string) {
	located = make([]Located, 0, len(codes))
	for _, code := range codes {
		p, err := x.CentroidOf(code)
		if err != nil {
			missing = append(missing, code)
			continue
		}
		located = append(located, Located{Code: code, Point: p})
	}
	return located, missing
}

// Stats returns cache statistics for the current geometry set.
func (x *Index) Stats() CacheStats {
	return CacheStats{
		Entries: int(x.set.Load().size.Load()),
		Hits:    x.hits.Load(),
		Misses:  x.misses.Load(),
	}
}

// BBoxCenter returns the center of g's bounding box. Nil, empty or
// non-finite geometry yields (0,0).
func BBoxCenter(g geom.T) (p Point) {
	if g == nil {
		return Point{}
	}
	defer func() {
		if recover() != nil {
			p = Point{}
		}
	}()

	b := g.Bounds()
	if b == nil || b.IsEmpty() || b.Layout().Stride() < 2 {
		return Point{}
	}
	lon := (b.Min(0) + b.Max(0)) / 2
	lat := (b.Min(1) + b.Max(1)) / 2
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return Point{}
	}
	return Point{Lat: lat, Lon: lon}
}
