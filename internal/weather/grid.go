package weather

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/spatial"
)

// Grid bounds. Polar latitudes are skipped.
const (
	MinLat = -60.0
	MaxLat = 70.0
	MinLon = -180.0
	MaxLon = 180.0

	DefaultResolution = 15.0
)

// Grid returns sample points every resolution degrees over the bounds,
// latitude-major and rounded to one decimal. Bounds are inclusive.
func Grid(resolution float64) ([]spatial.Point, error) {
	if resolution <= 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return nil, eris.Wrapf(ErrInvalidQuery, "weather: invalid grid resolution %v", resolution)
	}
	rows := int(math.Floor((MaxLat-MinLat)/resolution+1e-9)) + 1
	cols := int(math.Floor((MaxLon-MinLon)/resolution+1e-9)) + 1

	out := make([]spatial.Point, 0, rows*cols)
	for i := range rows {
		lat := round1(MinLat + float64(i)*resolution)
		for j := range cols {
			out = append(out, spatial.Point{Lat: lat, Lon: round1(MinLon + float64(j)*resolution)})
		}
	}
	return out, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
