// Package colormap buckets scalar values into discrete palette colors for
// choropleth rendering.
package colormap

import (
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// NoData is the color token for regions without a value.
const NoData = "#cccccc"

// DefaultScheme is used when a scheme name is unknown.
const DefaultScheme = "ylorrd"

var builtin = map[string][]string{
	"ylorrd": {"#ffffb2", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#b10026"},
	"blues":  {"#eff3ff", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#084594"},
	"greens": {"#edf8e9", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#005a32"},
	"viridis": {
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
	},
	"spectral": {
		"#5e4fa2", "#3288bd", "#66c2a5", "#abdda4", "#e6f598",
		"#fee08b", "#fdae61", "#f46d43", "#d53e4f", "#9e0142",
	},
	"temperature": {
		"#313695", "#4575b4", "#74add1", "#abd9e9", "#e0f3f8",
		"#fee090", "#fdae61", "#f46d43", "#d73027", "#a50026",
	},
}

// Registry resolves scheme names to palettes.
type Registry struct {
	schemes  map[string][]string
	fallback string
}

// Default holds the built-in schemes.
var Default = mustRegistry(nil, DefaultScheme)

func mustRegistry(custom map[string][]string, fallback string) *Registry {
	r, err := NewRegistry(custom, fallback)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRegistry returns the built-in schemes extended by custom ones. Custom
// palettes must have 7 or 10 colors and override built-ins of the same name.
func NewRegistry(custom map[string][]string, fallback string) (*Registry, error) {
	r := &Registry{schemes: make(map[string][]string, len(builtin)+len(custom))}
	for name, colors := range builtin {
		r.schemes[name] = colors
	}
	for name, colors := range custom {
		if len(colors) != 7 && len(colors) != 10 {
			return nil, eris.Errorf("colormap: scheme %q has %d colors, want 7 or 10", name, len(colors))
		}
		r.schemes[strings.ToLower(name)] = append([]string(nil), colors...)
	}

	fallback = strings.ToLower(fallback)
	if _, ok := r.schemes[fallback]; !ok {
		fallback = DefaultScheme
	}
	r.fallback = fallback
	return r, nil
}

// Names returns the registered scheme names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemes))
	for name := range r.schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Colors returns the palette for scheme, or the fallback palette.
func (r *Registry) Colors(scheme string) []string {
	if colors, ok := r.schemes[strings.ToLower(scheme)]; ok {
		return colors
	}
	return r.schemes[r.fallback]
}

// ColorFor buckets value against maxValue. The ratio is anchored at zero, so
// minValue does not shift the buckets. A non-positive maxValue yields the
// first color.
func (r *Registry) ColorFor(value, minValue, maxValue float64, scheme string) string {
	colors := r.Colors(scheme)
	return colors[bucketIndex(value, maxValue, len(colors))]
}

// bucketIndex returns the highest i with value/maxValue > i/n, or 0.
func bucketIndex(value, maxValue float64, n int) int {
	if maxValue <= 0 || math.IsNaN(maxValue) || math.IsNaN(value) {
		return 0
	}
	ratio := value / maxValue
	for i := n - 1; i > 0; i-- {
		if ratio > float64(i)/float64(n) {
			return i
		}
	}
	return 0
}

// Bucket is one legend entry. Values in (From, To] get Color; the first
// bucket also covers everything at or below To.
type Bucket struct {
	Color string  `json:"color"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
}

// Legend describes the value bounds of each bucket for the range.
func (r *Registry) Legend(minValue, maxValue float64, scheme string) []Bucket {
	colors := r.Colors(scheme)
	if maxValue <= 0 || math.IsNaN(maxValue) {
		return []Bucket{{Color: colors[0], From: minValue, To: maxValue}}
	}
	n := float64(len(colors))
	out := make([]Bucket, len(colors))
	for i, c := range colors {
		out[i] = Bucket{Color: c, From: float64(i) / n * maxValue, To: float64(i+1) / n * maxValue}
	}
	out[0].From = math.Min(minValue, 0)
	return out
}

// ColorFor uses the built-in schemes.
func ColorFor(value, minValue, maxValue float64, scheme string) string {
	return Default.ColorFor(value, minValue, maxValue, scheme)
}

// Legend uses the built-in schemes.
func Legend(minValue, maxValue float64, scheme string) []Bucket {
	return Default.Legend(minValue, maxValue, scheme)
}
