package layers

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/weather"
)

// weatherLayer is a parsed "variable[@hour][#granularity]" layer name.
// granularity is empty when the name does not fix one.
type weatherLayer struct {
	variable    string
	hour        int
	granularity region.Granularity
}

// parseWeatherLayer parses a weather layer name without its prefix. The hour
// defaults to 0.
func parseWeatherLayer(name string) (weatherLayer, error) {
	rest, scale, scoped := strings.Cut(name, "#")
	var wl weatherLayer
	if scoped {
		g, ok := region.ParseGranularity(scale)
		if !ok {
			return wl, eris.Wrapf(weather.ErrInvalidQuery, "layers: weather layer %q has an unknown granularity", name)
		}
		wl.granularity = g
	}

	variable, hour, found := strings.Cut(rest, "@")
	wl.variable = variable
	if !found {
		return wl, nil
	}
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 {
		return weatherLayer{}, eris.Wrapf(weather.ErrInvalidQuery, "layers: weather layer %q has an invalid hour", name)
	}
	wl.hour = h
	return wl, nil
}

// followsOther reports whether layer is a weather layer that takes its
// granularity from the layer it is compared with.
func followsOther(layer string) bool {
	name, ok := strings.CutPrefix(layer, WeatherPrefix)
	return ok && !strings.Contains(name, "#")
}

func isWeather(layer string) bool {
	return strings.HasPrefix(layer, WeatherPrefix)
}
