package spatial

import (
	"github.com/sells-group/geolayer/internal/dataset"
)

// Sample is one scalar observation at a point. Value is nil when the source
// reported no value.
type Sample struct {
	Lat   float64  `json:"lat"`
	Lon   float64  `json:"lon"`
	Value *float64 `json:"value"`
}

// Assign maps every region to its nearest sample using squared flat-plane
// distance in degrees. Ties keep the first sample in slice order, so the
// result is deterministic for a fixed sample order. Every region maps to nil
// when samples is empty.
func Assign(samples []Sample, regions []Located) map[string]*Sample {
	out := make(map[string]*Sample, len(regions))
	for _, r := range regions {
		best := -1
		var bestDist float64
		for i, s := range samples {
			dLat := s.Lat - r.Lat
			dLon := s.Lon - r.Lon
			d := dLat*dLat + dLon*dLon
			if best < 0 || d < bestDist {
				best = i
				bestDist = d
			}
		}
		if best < 0 {
			out[r.Code] = nil
			continue
		}
		s := samples[best]
		out[r.Code] = &s
	}
	return out
}

// ToStore wraps join output as a single-key store. Regions whose nearest
// sample has no value are left absent.
func ToStore(assigned map[string]*Sample, key string, opts ...dataset.Option) *dataset.Store {
	values := make(map[string]map[string]*float64, len(assigned))
	for code, s := range assigned {
		if s == nil || s.Value == nil {
			continue
		}
		v := *s.Value
		values[code] = map[string]*float64{key: &v}
	}
	return dataset.New(values, append([]dataset.Option{dataset.WithTimeKeys([]string{key})}, opts...)...)
}
