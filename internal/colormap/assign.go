package colormap

import (
	"github.com/sells-group/geolayer/internal/dataset"
)

// Assignment is the region to color mapping for one render pass.
type Assignment struct {
	Scheme string            `json:"scheme"`
	Key    string            `json:"key"`
	Min    float64           `json:"min_value"`
	Max    float64           `json:"max_value"`
	Colors map[string]string `json:"colors"`
	Legend []Bucket          `json:"legend"`

	// Dataset codes that have a value but no boundary to draw.
	MissingGeometry []string `json:"missing_geometry,omitempty"`
}

// Assign colors every region in regions from the store's values at key.
// The range spans every time key of the store so colors stay comparable as
// the key changes. Regions without a value get NoData.
func (r *Registry) Assign(s *dataset.Store, key string, regions []string, scheme string) *Assignment {
	lo, hi, _ := s.OverallRange()
	return r.AssignRange(s, key, regions, scheme, lo, hi)
}

// AssignRange is Assign with a fixed value range, used when the range comes
// from variable metadata rather than the data.
func (r *Registry) AssignRange(s *dataset.Store, key string, regions []string, scheme string, lo, hi float64) *Assignment {
	a := &Assignment{
		Scheme: scheme,
		Key:    key,
		Min:    lo,
		Max:    hi,
		Colors: make(map[string]string, len(regions)),
		Legend: r.Legend(lo, hi, scheme),
	}

	drawn := make(map[string]bool, len(regions))
	for _, code := range regions {
		drawn[code] = true
		v, ok := s.Get(code, key)
		if !ok {
			a.Colors[code] = NoData
			continue
		}
		a.Colors[code] = r.ColorFor(v, lo, hi, scheme)
	}

	for _, code := range s.Codes() {
		if drawn[code] {
			continue
		}
		if _, ok := s.Get(code, key); ok {
			a.MissingGeometry = append(a.MissingGeometry, code)
		}
	}
	return a
}

// Assign uses the built-in schemes.
func Assign(s *dataset.Store, key string, regions []string, scheme string) *Assignment {
	return Default.Assign(s, key, regions, scheme)
}
