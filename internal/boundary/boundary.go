// Package boundary loads region boundary collections (GeoJSON, shapefile or
// PostGIS) into go-geom features keyed by their identifying properties.
package boundary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// Feature is one region boundary. Geometry is nil when the source geometry
// was missing or could not be decoded.
type Feature struct {
	Properties map[string]any
	Geometry   geom.T
}

// Property returns the named property as a trimmed string, or "" when absent.
func (f Feature) Property(key string) string {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Collection is a named set of boundary features. ID identifies the
// geometry set; caches derived from it are bound to this value.
type Collection struct {
	ID       string
	Features []Feature
}

// Len returns the number of features.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Features)
}
