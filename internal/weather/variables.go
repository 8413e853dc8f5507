// Package weather projects gridded forecast variables onto regions.
package weather

import (
	"sort"
)

// Variable describes one forecast variable and its display range.
type Variable struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Unit   string  `json:"unit"`
	Min    float64 `json:"min_value"`
	Max    float64 `json:"max_value"`
	Scheme string  `json:"scheme"`

	// Daily is the aggregate requested for daily forecasts.
	Daily string `json:"daily"`
}

// Columns returns the response columns that may carry the variable, in
// preference order.
func (v Variable) Columns(daily bool) []string {
	if !daily {
		return []string{v.ID}
	}
	return []string{v.Daily, v.ID + "_mean", v.ID + "_max", v.ID}
}

var variables = map[string]Variable{
	"temperature_2m":       {Name: "Temperature", Unit: "°C", Min: 15, Max: 40, Scheme: "temperature", Daily: "temperature_2m_mean"},
	"relative_humidity_2m": {Name: "Humidity", Unit: "%", Min: 0, Max: 100, Scheme: "blues", Daily: "relative_humidity_2m_mean"},
	"precipitation":        {Name: "Precipitation", Unit: "mm", Min: 0, Max: 50, Scheme: "blues", Daily: "precipitation_sum"},
	"wind_speed_10m":       {Name: "Wind Speed", Unit: "km/h", Min: 0, Max: 60, Scheme: "viridis", Daily: "wind_speed_10m_max"},
	"wind_direction_10m":   {Name: "Wind Direction", Unit: "°", Min: 0, Max: 360, Scheme: "spectral", Daily: "wind_direction_10m_dominant"},
	"cloud_cover":          {Name: "Cloud Cover", Unit: "%", Min: 0, Max: 100, Scheme: "blues", Daily: "cloud_cover_mean"},
	"surface_pressure":     {Name: "Surface Pressure", Unit: "hPa", Min: 990, Max: 1030, Scheme: "viridis", Daily: "surface_pressure_mean"},
	"soil_temperature_0cm": {Name: "Soil Temperature", Unit: "°C", Min: 20, Max: 35, Scheme: "temperature", Daily: "soil_temperature_0cm_mean"},
	"uv_index":             {Name: "UV Index", Unit: "", Min: 0, Max: 12, Scheme: "ylorrd", Daily: "uv_index_max"},
	"apparent_temperature": {Name: "Feels Like", Unit: "°C", Min: 15, Max: 45, Scheme: "temperature", Daily: "apparent_temperature_mean"},
	"dew_point_2m":         {Name: "Dew Point", Unit: "°C", Min: 15, Max: 30, Scheme: "greens", Daily: "dew_point_2m_mean"},
	"visibility":           {Name: "Visibility", Unit: "m", Min: 0, Max: 50000, Scheme: "greens", Daily: "visibility_mean"},
}

// listed is the display order of variables; point views report current
// conditions for the first currentCount of them.
var listed = []string{
	"temperature_2m", "relative_humidity_2m", "precipitation", "wind_speed_10m",
	"wind_direction_10m", "cloud_cover", "surface_pressure", "soil_temperature_0cm",
	"uv_index", "apparent_temperature", "dew_point_2m", "visibility",
}

const currentCount = 8

// DefaultVariable is used when a request names none.
const DefaultVariable = "temperature_2m"

// Lookup returns the variable with the given id.
func Lookup(id string) (Variable, bool) {
	v, ok := variables[id]
	if !ok {
		return Variable{}, false
	}
	v.ID = id
	return v, true
}

// Variables returns every supported variable sorted by id.
func Variables() []Variable {
	out := make([]Variable, 0, len(variables))
	for id := range variables {
		v, _ := Lookup(id)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
