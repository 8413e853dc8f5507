package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/dataset"
	"github.com/sells-group/geolayer/internal/db"
)

// PostgresSource reads layers from the layers table.
type PostgresSource struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres connects to Postgres.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*PostgresSource, error) {
	pool, err := db.Open(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open")
	}
	return &PostgresSource{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Close does not close it.
func NewPostgresFromPool(pool db.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Pool returns the underlying pool for boundary loading.
func (s *PostgresSource) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS layers (
	name       TEXT PRIMARY KEY,
	layer_type TEXT NOT NULL DEFAULT 'choropleth',
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS boundaries (
	id         BIGSERIAL PRIMARY KEY,
	collection TEXT NOT NULL,
	properties JSONB NOT NULL DEFAULT '{}',
	geom       geometry(Geometry, 4326)
);

CREATE INDEX IF NOT EXISTS idx_boundaries_collection ON boundaries(collection);
`

// Migrate creates the layers and boundaries tables.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Load reads one layer payload.
func (s *PostgresSource) Load(ctx context.Context, layer string) (*dataset.Descriptor, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM layers WHERE name = $1`, layer).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(layer)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load layer %s", layer)
	}
	return dataset.DecodeDescriptor(layer, payload)
}

// List returns all layers sorted by name.
func (s *PostgresSource) List(ctx context.Context) ([]LayerInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, layer_type, COALESCE(payload->>'geojson_file', '') FROM layers ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list layers")
	}
	defer rows.Close()

	var out []LayerInfo
	for rows.Next() {
		var info LayerInfo
		if err := rows.Scan(&info.Name, &info.Type, &info.GeometryRef); err != nil {
			return nil, eris.Wrap(err, "postgres: scan layer")
		}
		out = append(out, info)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate layers")
}

// Close closes the pool if this source opened it.
func (s *PostgresSource) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
