package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geolayer/internal/dataset"
)

// SQLiteSource reads layers from a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteSource{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS layers (
	name       TEXT PRIMARY KEY,
	layer_type TEXT NOT NULL DEFAULT 'choropleth',
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Migrate creates the layers table.
func (s *SQLiteSource) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Load reads one layer payload.
func (s *SQLiteSource) Load(ctx context.Context, layer string) (*dataset.Descriptor, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM layers WHERE name = ?`, layer).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(layer)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load layer %s", layer)
	}
	return dataset.DecodeDescriptor(layer, []byte(payload))
}

// List returns all layers sorted by name.
func (s *SQLiteSource) List(ctx context.Context) ([]LayerInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, layer_type, COALESCE(json_extract(payload, '$.geojson_file'), '') FROM layers ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list layers")
	}
	defer rows.Close() //nolint:errcheck

	var out []LayerInfo
	for rows.Next() {
		var info LayerInfo
		if err := rows.Scan(&info.Name, &info.Type, &info.GeometryRef); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan layer")
		}
		out = append(out, info)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate layers")
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
