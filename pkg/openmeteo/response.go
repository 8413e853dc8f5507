package openmeteo

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/spatial"
)

// Series is one time-indexed block (hourly or daily) of a location.
type Series struct {
	Time   []string
	Values map[string][]*float64
}

// UnmarshalJSON splits the "time" axis from the variable columns.
func (s *Series) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Values = make(map[string][]*float64, len(raw))
	for name, col := range raw {
		if name == "time" {
			if err := json.Unmarshal(col, &s.Time); err != nil {
				return eris.Wrap(err, "openmeteo: decode time axis")
			}
			continue
		}
		var vals []*float64
		if err := json.Unmarshal(col, &vals); err != nil {
			// Non-numeric columns are skipped.
			continue
		}
		s.Values[name] = vals
	}
	return nil
}

// Conditions are the current values of a location, keyed by variable.
type Conditions struct {
	Time   string
	Values map[string]float64
}

// UnmarshalJSON keeps the time stamp and every numeric variable.
func (c *Conditions) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Values = make(map[string]float64, len(raw))
	for name, field := range raw {
		switch name {
		case "time":
			if err := json.Unmarshal(field, &c.Time); err != nil {
				return eris.Wrap(err, "openmeteo: decode current time")
			}
		case "interval":
		default:
			var v *float64
			if err := json.Unmarshal(field, &v); err != nil || v == nil {
				continue
			}
			c.Values[name] = *v
		}
	}
	return nil
}

// Location is the forecast for one requested coordinate. Latitude and
// Longitude are the grid cell Open-Meteo resolved the request to.
type Location struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Timezone  string      `json:"timezone"`
	Hourly    *Series     `json:"hourly,omitempty"`
	Daily     *Series     `json:"daily,omitempty"`
	Current   *Conditions `json:"current,omitempty"`
}

// Response holds every location of one forecast call.
type Response struct {
	Locations []Location
	Daily     bool
}

// decodeLocations accepts both the array form returned for multiple
// coordinates and the object form returned for one.
func decodeLocations(body []byte) ([]Location, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, eris.New("openmeteo: empty response body")
	}
	if body[0] == '[' {
		var locs []Location
		if err := json.Unmarshal(body, &locs); err != nil {
			return nil, eris.Wrap(err, "openmeteo: decode locations")
		}
		return locs, nil
	}
	var loc Location
	if err := json.Unmarshal(body, &loc); err != nil {
		return nil, eris.Wrap(err, "openmeteo: decode location")
	}
	return []Location{loc}, nil
}

// Times returns the time axis of the first location.
func (r *Response) Times() []string {
	for _, loc := range r.Locations {
		if s := loc.series(r.Daily); s != nil {
			return s.Time
		}
	}
	return nil
}

func (l Location) series(daily bool) *Series {
	if daily {
		return l.Daily
	}
	return l.Hourly
}

// Samples extracts the value at index for every location. The first column
// name present in a location is used, so daily aggregates can be listed
// after the plain variable name. A location without the column or index
// yields a sample with a nil value.
func (r *Response) Samples(index int, columns ...string) []spatial.Sample {
	out := make([]spatial.Sample, 0, len(r.Locations))
	for _, loc := range r.Locations {
		s := spatial.Sample{Lat: loc.Latitude, Lon: loc.Longitude}
		if series := loc.series(r.Daily); series != nil {
			for _, col := range columns {
				vals, ok := series.Values[col]
				if !ok {
					continue
				}
				if index >= 0 && index < len(vals) && vals[index] != nil {
					v := *vals[index]
					s.Value = &v
				}
				break
			}
		}
		out = append(out, s)
	}
	return out
}
