// Package store reads dataset descriptors from a directory, Postgres or
// SQLite.
package store

import (
	"context"
	"errors"
	"regexp"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/dataset"
	"github.com/sells-group/geolayer/internal/db"
)

// ErrNotFound is returned when a layer does not exist.
var ErrNotFound = errors.New("layer not found")

// LayerInfo summarizes a stored layer.
type LayerInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	GeometryRef string `json:"geojson_file,omitempty"`
}

// Source loads dataset descriptors by layer name.
type Source interface {
	Load(ctx context.Context, layer string) (*dataset.Descriptor, error)
	List(ctx context.Context) ([]LayerInfo, error)
	Close() error
}

// Supported drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and configures a Source.
type Config struct {
	Driver string        `yaml:"driver" mapstructure:"driver"`
	Dir    string        `yaml:"dir" mapstructure:"dir"`
	DSN    string        `yaml:"dsn" mapstructure:"dsn"`
	Pool   db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// Open creates the Source named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Source, error) {
	var (
		src Source
		err error
	)
	switch cfg.Driver {
	case "", DriverFile:
		src, err = NewFileSource(cfg.Dir)
	case DriverPostgres:
		src, err = NewPostgres(ctx, cfg.DSN, cfg.Pool)
	case DriverSQLite:
		src, err = NewSQLite(cfg.DSN)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

var layerName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateLayerName rejects names that could escape a layer directory.
func ValidateLayerName(name string) error {
	if !layerName.MatchString(name) || name == "." || name == ".." {
		return eris.Errorf("store: invalid layer name %q", name)
	}
	return nil
}

func notFound(layer string) error {
	return eris.Wrapf(ErrNotFound, "store: layer %q", layer)
}
