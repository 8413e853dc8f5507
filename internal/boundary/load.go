package boundary

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/db"
)

// Source names one boundary collection. Exactly one of Path or Collection
// is set; ID overrides the collection ID, which otherwise is the file's base
// name or the Postgres collection name.
type Source struct {
	ID         string `yaml:"id" mapstructure:"id"`
	Path       string `yaml:"path" mapstructure:"path"`
	Collection string `yaml:"collection" mapstructure:"collection"`
}

// Load reads the collection named by src. pool is only used for Postgres
// collections and may be nil otherwise.
func Load(ctx context.Context, src Source, pool db.Pool) (*Collection, error) {
	var (
		c   *Collection
		err error
	)
	switch {
	case src.Collection != "":
		if pool == nil {
			return nil, eris.Errorf("boundary: collection %q needs a postgres store", src.Collection)
		}
		c, err = LoadPostgres(ctx, pool, src.Collection)
	case strings.EqualFold(filepath.Ext(src.Path), ".shp"):
		c, err = LoadShapefile(src.Path)
	case src.Path != "":
		c, err = LoadGeoJSONFile(src.Path)
	default:
		return nil, eris.New("boundary: source needs a path or a collection")
	}
	if err != nil {
		return nil, err
	}
	if src.ID != "" {
		c.ID = src.ID
	}
	return c, nil
}

// LoadAll loads every source in order and stops at the first failure.
func LoadAll(ctx context.Context, srcs []Source, pool db.Pool) ([]*Collection, error) {
	out := make([]*Collection, 0, len(srcs))
	for _, src := range srcs {
		c, err := Load(ctx, src, pool)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
