// Package region normalizes heterogeneous region identifiers to canonical
// codes and classifies datasets by administrative scale.
package region

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/boundary"
)

// Region is a canonical administrative area.
type Region struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Granularity Granularity `json:"granularity"`
}

// Descriptor is the dataset metadata Classify needs.
type Descriptor interface {
	LayerName() string
	GeometryReference() string
}

// DefaultCandidateKeys lists the identifying feature properties in priority
// order. The first one present on a feature becomes its canonical code.
func DefaultCandidateKeys() []string {
	return []string{"ISO3166-1-Alpha-3", "ISO3166-1-Alpha-2", "Propinsi", "name"}
}

// DefaultProvinceGeometry is the geometry reference of the fixed
// administrative-province boundary set.
const DefaultProvinceGeometry = "indonesia-provinces.geojson"

// Options configures a Catalog.
type Options struct {
	CandidateKeys    []string
	NameKeys         []string
	Aliases          map[string]string
	ProvinceGeometry string
}

type entry struct {
	region  Region
	feature boundary.Feature
}

// Catalog resolves region identifiers against one or more boundary
// collections. It is safe for concurrent use once built.
type Catalog struct {
	opts    Options
	byCode  map[string]*entry
	index   map[string]string // folded alternate spelling -> canonical code
	aliases map[string]string
	classes sync.Map // classification key -> Granularity
}

// NewCatalog indexes the given collections. A collection whose ID matches
// the province geometry reference yields province regions; all others are
// global.
func NewCatalog(opts Options, collections ...*boundary.Collection) *Catalog {
	if len(opts.CandidateKeys) == 0 {
		opts.CandidateKeys = DefaultCandidateKeys()
	}
	if len(opts.NameKeys) == 0 {
		opts.NameKeys = []string{"name", "NAME", "Propinsi", "admin"}
	}
	if opts.ProvinceGeometry == "" {
		opts.ProvinceGeometry = DefaultProvinceGeometry
	}

	c := &Catalog{
		opts:    opts,
		byCode:  make(map[string]*entry),
		index:   make(map[string]string),
		aliases: make(map[string]string),
	}
	for k, v := range DefaultAliases() {
		c.aliases[fold(k)] = fold(v)
	}
	for k, v := range opts.Aliases {
		c.aliases[fold(k)] = fold(v)
	}

	for _, col := range collections {
		if col == nil {
			continue
		}
		g := Global
		if col.ID == opts.ProvinceGeometry {
			g = Province
		}
		c.addCollection(col, g)
	}
	return c
}

func (c *Catalog) addCollection(col *boundary.Collection, g Granularity) {
	var skipped int
	for _, f := range col.Features {
		code := ""
		var alternates []string
		for _, key := range c.opts.CandidateKeys {
			v := f.Property(key)
			if v == "" {
				continue
			}
			folded := fold(v)
			if code == "" {
				code = folded
			}
			alternates = append(alternates, folded)
		}
		if code == "" {
			skipped++
			continue
		}
		if _, dup := c.byCode[code]; dup {
			continue
		}

		c.byCode[code] = &entry{
			region:  Region{Code: code, Name: c.displayName(f, code), Granularity: g},
			feature: f,
		}
		for _, alt := range alternates {
			if _, taken := c.index[alt]; !taken {
				c.index[alt] = code
			}
		}
	}
	if skipped > 0 {
		zap.L().Debug("region: features without identifying property",
			zap.String("collection", col.ID),
			zap.Int("skipped", skipped),
		)
	}
}

func (c *Catalog) displayName(f boundary.Feature, code string) string {
	for _, key := range c.opts.NameKeys {
		if v := f.Property(key); v != "" {
			return v
		}
	}
	return code
}

// Normalize maps a raw identifier to its canonical code by case- and
// diacritic-insensitive match against known codes and names. Unmatched
// identifiers are returned unmodified.
func (c *Catalog) Normalize(raw string) string {
	key := fold(raw)
	if key == "" {
		return raw
	}
	if code, ok := c.lookup(key); ok {
		return code
	}
	if stripped := stripQualifier(key); stripped != key {
		if code, ok := c.lookup(stripped); ok {
			return code
		}
	}
	return raw
}

func (c *Catalog) lookup(key string) (string, bool) {
	if alias, ok := c.aliases[key]; ok {
		key = alias
	}
	code, ok := c.index[key]
	return code, ok
}

// Region returns the region for a canonical code.
func (c *Catalog) Region(code string) (Region, bool) {
	e, ok := c.byCode[code]
	if !ok {
		return Region{}, false
	}
	return e.region, true
}

// Feature returns the boundary feature for a canonical code.
func (c *Catalog) Feature(code string) (boundary.Feature, bool) {
	e, ok := c.byCode[code]
	if !ok {
		return boundary.Feature{}, false
	}
	return e.feature, true
}

// DisplayName returns the region's display name, or the code itself when the
// region is unknown.
func (c *Catalog) DisplayName(code string) string {
	if e, ok := c.byCode[code]; ok {
		return e.region.Name
	}
	return code
}

// Regions returns the regions of the given granularity sorted by code.
func (c *Catalog) Regions(g Granularity) []Region {
	out := make([]Region, 0, len(c.byCode))
	for _, e := range c.byCode {
		if e.region.Granularity == g {
			out = append(out, e.region)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Classify reports province iff the dataset's geometry is the fixed
// province boundary set. Results are cached per layer and geometry.
func (c *Catalog) Classify(d Descriptor) Granularity {
	key := d.LayerName() + "\x00" + d.GeometryReference()
	if g, ok := c.classes.Load(key); ok {
		return g.(Granularity)
	}
	g := Global
	if d.GeometryReference() == c.opts.ProvinceGeometry {
		g = Province
	}
	actual, _ := c.classes.LoadOrStore(key, g)
	return actual.(Granularity)
}
