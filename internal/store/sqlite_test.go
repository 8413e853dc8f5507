package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteSource {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "layers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func insertLayer(t *testing.T, st *SQLiteSource, name, payload string) {
	t.Helper()
	_, err := st.db.Exec(`INSERT INTO layers (name, payload) VALUES (?, ?)`, name, payload)
	require.NoError(t, err)
}

func TestSQLite_Load(t *testing.T) {
	st := newTestSQLite(t)
	insertLayer(t, st, "gdp", gdpPayload)

	d, err := st.Load(context.Background(), "gdp")
	require.NoError(t, err)
	assert.Equal(t, "gdp", d.Name)
	assert.Equal(t, "countries.geojson", d.GeometryRef)
}

func TestSQLite_LoadNotFound(t *testing.T) {
	st := newTestSQLite(t)

	_, err := st.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_List(t *testing.T) {
	st := newTestSQLite(t)
	insertLayer(t, st, "wage", `{"data": {}}`)
	insertLayer(t, st, "gdp", gdpPayload)

	layers, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, LayerInfo{Name: "gdp", Type: "choropleth", GeometryRef: "countries.geojson"}, layers[0])
	assert.Equal(t, LayerInfo{Name: "wage", Type: "choropleth"}, layers[1])
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLite(t)
	require.NoError(t, st.Migrate(context.Background()))
}
