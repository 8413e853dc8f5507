package weather

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/spatial"
	"github.com/sells-group/geolayer/pkg/openmeteo"
)

// PointSource fetches every variable's forecast at one coordinate.
type PointSource interface {
	Point(ctx context.Context, req openmeteo.PointRequest) (*openmeteo.Location, error)
}

// Reading is the current value of one variable.
type Reading struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// PointForecast is the weather at one coordinate, as shown in map popups.
type PointForecast struct {
	Latitude  float64               `json:"latitude"`
	Longitude float64               `json:"longitude"`
	Timezone  string                `json:"timezone"`
	Current   map[string]Reading    `json:"current"`
	Times     []string              `json:"times"`
	Hourly    map[string][]*float64 `json:"hourly"`
}

// FetchPoint returns the hourly forecast of every variable at lat/lon, plus
// current readings for the leading variables.
func FetchPoint(ctx context.Context, src PointSource, lat, lon float64) (*PointForecast, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, eris.Wrapf(ErrInvalidQuery, "weather: coordinate %v,%v is out of range", lat, lon)
	}

	loc, err := src.Point(ctx, openmeteo.PointRequest{
		Point:     spatial.Point{Lat: lat, Lon: lon},
		Variables: listed,
		Current:   listed[:currentCount],
	})
	if err != nil {
		return nil, eris.Wrap(err, "weather: fetch point")
	}

	out := &PointForecast{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timezone:  loc.Timezone,
		Current:   make(map[string]Reading),
		Hourly:    make(map[string][]*float64),
	}
	if loc.Current != nil {
		for _, id := range listed[:currentCount] {
			v, ok := loc.Current.Values[id]
			if !ok {
				continue
			}
			meta, _ := Lookup(id)
			out.Current[id] = Reading{Name: meta.Name, Value: v, Unit: meta.Unit}
		}
	}
	if loc.Hourly != nil {
		out.Times = loc.Hourly.Time
		for _, id := range listed {
			if vals, ok := loc.Hourly.Values[id]; ok {
				out.Hourly[id] = vals
			}
		}
	}
	return out, nil
}
