package boundary

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/db"
)

// SRID of stored boundary geometry (WGS 84).
const SRID = 4326

var boundaryColumns = []string{"collection", "properties", "geom"}

// SavePostgres replaces the stored rows of collection with c's features so
// LoadPostgres(collection) returns them. Features whose geometry cannot be
// encoded are stored without geometry.
func SavePostgres(ctx context.Context, pool db.Pool, collection string, c *Collection) (int64, error) {
	if c.Len() == 0 {
		return 0, eris.Errorf("boundary: refusing to store empty collection %q", collection)
	}

	rows := make([][]any, 0, len(c.Features))
	var dropped int
	for _, f := range c.Features {
		props, err := json.Marshal(f.Properties)
		if err != nil {
			return 0, eris.Wrap(err, "boundary: encode properties")
		}
		wkb, err := encodeEWKB(f.Geometry)
		if err != nil {
			dropped++
		}
		rows = append(rows, []any{collection, props, wkb})
	}
	if dropped > 0 {
		zap.L().Warn("boundary: stored features without geometry",
			zap.String("collection", collection),
			zap.Int("count", dropped),
		)
	}

	n, err := db.ReplaceRows(ctx, pool, "boundaries", db.Match{Column: "collection", Value: collection}, boundaryColumns, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "boundary: store collection %q", collection)
	}
	return n, nil
}

// encodeEWKB encodes polygonal geometry with SRID. Nil geometry encodes to
// nil.
func encodeEWKB(g geom.T) ([]byte, error) {
	switch t := g.(type) {
	case nil:
		return nil, nil
	case *geom.Polygon:
		if t.SRID() == 0 {
			g = t.Clone().SetSRID(SRID)
		}
	case *geom.MultiPolygon:
		if t.SRID() == 0 {
			g = t.Clone().SetSRID(SRID)
		}
	default:
		return nil, eris.Errorf("boundary: unsupported geometry %T", g)
	}
	return ewkb.Marshal(g, ewkb.NDR)
}
