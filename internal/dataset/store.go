// Package dataset wraps region-indexed datasets as immutable
// region-code -> time-key -> value stores.
package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/geolayer/internal/region"
)

// Store maps region code -> time key -> value. Missing data is represented
// by absence. A Store is immutable once built and safe for concurrent reads.
type Store struct {
	name        string
	label       string
	granularity region.Granularity
	values      map[string]map[string]float64
	keys        []string
	codes       []string
	declared    *[2]float64
}

// Option configures Store construction.
type Option func(*buildConfig)

type buildConfig struct {
	normalize   func(string) string
	granularity region.Granularity
	keys        []string
	name        string
	label       string
	lo, hi      *float64
}

// WithNormalizer rewrites every region code before it is stored.
func WithNormalizer(fn func(string) string) Option {
	return func(c *buildConfig) { c.normalize = fn }
}

// WithGranularity tags the store's region scale.
func WithGranularity(g region.Granularity) Option {
	return func(c *buildConfig) { c.granularity = g }
}

// WithTimeKeys fixes the time key order. Keys not listed are appended in
// sorted order.
func WithTimeKeys(keys []string) Option {
	return func(c *buildConfig) { c.keys = keys }
}

// WithValueRange sets the declared color range. It is ignored unless both
// bounds are finite and lo <= hi.
func WithValueRange(lo, hi *float64) Option {
	return func(c *buildConfig) { c.lo, c.hi = lo, hi }
}

// WithName sets the store's name and value label.
func WithName(name, label string) Option {
	return func(c *buildConfig) {
		c.name = name
		c.label = label
	}
}

// New builds a Store. Nil and non-finite values are dropped, and codes left
// without any time key are dropped with them. When normalization maps two
// raw codes onto one canonical code their time series are merged in raw
// code order, so the last raw code wins a shared key.
func New(values map[string]map[string]*float64, opts ...Option) *Store {
	cfg := buildConfig{granularity: region.Global}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		name:        cfg.name,
		label:       cfg.label,
		granularity: cfg.granularity,
		values:      make(map[string]map[string]float64, len(values)),
	}

	raws := make([]string, 0, len(values))
	for raw := range values {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	seen := make(map[string]bool)
	for _, raw := range raws {
		series := values[raw]
		code := raw
		if cfg.normalize != nil {
			code = cfg.normalize(raw)
		}
		for key, v := range series {
			if v == nil || !finite(*v) {
				continue
			}
			m, ok := s.values[code]
			if !ok {
				m = make(map[string]float64, len(series))
				s.values[code] = m
			}
			m[key] = *v
			seen[key] = true
		}
	}

	s.codes = make([]string, 0, len(s.values))
	for code := range s.values {
		s.codes = append(s.codes, code)
	}
	sort.Strings(s.codes)

	s.keys = orderKeys(cfg.keys, seen)
	if cfg.lo != nil && cfg.hi != nil && finite(*cfg.lo) && finite(*cfg.hi) && *cfg.lo <= *cfg.hi {
		s.declared = &[2]float64{*cfg.lo, *cfg.hi}
	}
	return s
}

// FromDescriptor builds a Store from a dataset descriptor, keeping its time
// key order.
func FromDescriptor(d *Descriptor, opts ...Option) *Store {
	base := []Option{
		WithTimeKeys(d.TimeKeys),
		WithName(d.Name, d.ValueColumnLabel),
		WithValueRange(d.MinValue, d.MaxValue),
	}
	return New(d.Values, append(base, opts...)...)
}

// orderKeys returns the listed keys that occur in the data, followed by any
// unlisted keys ordered numerically (non-numeric keys first).
func orderKeys(listed []string, seen map[string]bool) []string {
	out := make([]string, 0, len(seen))
	used := make(map[string]bool, len(seen))
	for _, k := range listed {
		if seen[k] && !used[k] {
			out = append(out, k)
			used[k] = true
		}
	}
	var rest []string
	for k := range seen {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		ni, nj := numericKey(rest[i]), numericKey(rest[j])
		if ni != nj {
			return ni < nj
		}
		return rest[i] < rest[j]
	})
	return append(out, rest...)
}

func numericKey(k string) float64 {
	n, err := strconv.ParseFloat(k, 64)
	if err != nil {
		return math.Inf(-1)
	}
	return n
}

// Name returns the dataset name.
func (s *Store) Name() string { return s.name }

// Label returns the dataset's value column label.
func (s *Store) Label() string { return s.label }

// Granularity returns the dataset's region scale.
func (s *Store) Granularity() region.Granularity { return s.granularity }

// Len returns the number of region codes with data.
func (s *Store) Len() int { return len(s.codes) }

// Codes returns the region codes in ascending order.
func (s *Store) Codes() []string {
	return append([]string(nil), s.codes...)
}

// TimeKeys returns the time keys in source or chronological order.
func (s *Store) TimeKeys() []string {
	return append([]string(nil), s.keys...)
}

// LatestKey returns the last time key, or "" for an empty store.
func (s *Store) LatestKey() string {
	if len(s.keys) == 0 {
		return ""
	}
	return s.keys[len(s.keys)-1]
}

// Timeless reports whether the store's only time key is AllKey.
func (s *Store) Timeless() bool {
	return len(s.keys) == 1 && s.keys[0] == AllKey
}

// Get looks up a value by exact code, then by upper-cased code. A timeless
// store answers every key from its AllKey entry.
func (s *Store) Get(code, key string) (float64, bool) {
	series, ok := s.values[code]
	if !ok {
		series, ok = s.values[strings.ToUpper(code)]
		if !ok {
			return 0, false
		}
	}
	if s.Timeless() {
		key = AllKey
	}
	v, ok := series[key]
	return v, ok
}

// Slice returns every code's value at key.
func (s *Store) Slice(key string) map[string]float64 {
	out := make(map[string]float64, len(s.codes))
	for _, code := range s.codes {
		if v, ok := s.Get(code, key); ok {
			out[code] = v
		}
	}
	return out
}

// Range returns the minimum and maximum value at key. ok is false when no
// code has a value at key.
func (s *Store) Range(key string) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, code := range s.codes {
		v, found := s.Get(code, key)
		if !found {
			continue
		}
		ok = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// OverallRange returns the declared value range when one was given, else
// the minimum and maximum across every time key, so colors stay comparable
// when the selected key changes.
func (s *Store) OverallRange() (lo, hi float64, ok bool) {
	if s.declared != nil {
		return s.declared[0], s.declared[1], true
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, series := range s.values {
		for _, v := range series {
			ok = true
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
