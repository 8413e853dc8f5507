package boundary

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/db"
)

const boundaryQuery = `
	SELECT properties, ST_AsEWKB(geom)
	FROM boundaries
	WHERE collection = $1
	ORDER BY id`

// LoadPostgres reads a boundary collection stored as PostGIS rows. Rows whose
// geometry fails to decode keep their properties with a nil Geometry.
func LoadPostgres(ctx context.Context, pool db.Pool, collection string) (*Collection, error) {
	rows, err := pool.Query(ctx, boundaryQuery, collection)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: query collection")
	}
	defer rows.Close()

	c := &Collection{ID: collection}
	for rows.Next() {
		var rawProps []byte
		var wkb []byte
		if err := rows.Scan(&rawProps, &wkb); err != nil {
			return nil, eris.Wrap(err, "boundary: scan row")
		}

		f := Feature{}
		if len(rawProps) > 0 {
			if err := json.Unmarshal(rawProps, &f.Properties); err != nil {
				return nil, eris.Wrap(err, "boundary: decode properties")
			}
		}
		if len(wkb) > 0 {
			g, err := ewkb.Unmarshal(wkb)
			if err != nil {
				zap.L().Debug("boundary: undecodable EWKB", zap.String("collection", collection), zap.Error(err))
			} else {
				f.Geometry = g
			}
		}
		c.Features = append(c.Features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "boundary: iterate rows")
	}
	if len(c.Features) == 0 {
		return nil, eris.Errorf("boundary: collection %q is empty", collection)
	}
	return c, nil
}
