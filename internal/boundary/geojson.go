package boundary

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// rawCollection defers per-feature decoding so one malformed geometry does
// not discard the whole collection.
type rawCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type rawProperties struct {
	Properties map[string]any `json:"properties"`
}

// DecodeGeoJSON reads a GeoJSON FeatureCollection. Features whose geometry
// cannot be decoded are kept with a nil Geometry.
func DecodeGeoJSON(r io.Reader, id string) (*Collection, error) {
	var raw rawCollection
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "boundary: decode feature collection")
	}
	if raw.Type != "" && raw.Type != "FeatureCollection" {
		return nil, eris.Errorf("boundary: expected FeatureCollection, got %q", raw.Type)
	}

	c := &Collection{ID: id, Features: make([]Feature, 0, len(raw.Features))}
	for i, msg := range raw.Features {
		var f geojson.Feature
		if err := json.Unmarshal(msg, &f); err != nil {
			var props rawProperties
			if perr := json.Unmarshal(msg, &props); perr != nil {
				zap.L().Debug("boundary: skipping undecodable feature", zap.Int("index", i), zap.Error(perr))
				continue
			}
			zap.L().Debug("boundary: feature geometry malformed", zap.Int("index", i), zap.Error(err))
			c.Features = append(c.Features, Feature{Properties: props.Properties})
			continue
		}
		c.Features = append(c.Features, Feature{Properties: f.Properties, Geometry: f.Geometry})
	}
	return c, nil
}

// LoadGeoJSONFile reads a FeatureCollection from disk. The collection ID is
// the file's base name.
func LoadGeoJSONFile(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open %s", path)
	}
	defer func() { _ = f.Close() }()

	c, err := DecodeGeoJSON(f, filepath.Base(path))
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: load %s", path)
	}
	zap.L().Info("boundary collection loaded",
		zap.String("collection", c.ID),
		zap.Int("features", c.Len()),
	)
	return c, nil
}
