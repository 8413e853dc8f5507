package boundary

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

func TestSavePostgres(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := &Collection{ID: "provinces.shp", Features: []Feature{
		{Properties: map[string]any{"Propinsi": "ACEH"}, Geometry: geom.NewPolygonFlat(geom.XY, []float64{0, 0, 2, 0, 2, 2, 0, 0}, []int{8})},
		{Properties: map[string]any{"Propinsi": "BALI"}, Geometry: geom.NewPointFlat(geom.XY, []float64{115, -8.4})},
		{Properties: map[string]any{"Propinsi": "PAPUA"}},
	}}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "boundaries" WHERE "collection" = \$1`).
		WithArgs("indonesia-provinces.geojson").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"boundaries"}, []string{"collection", "properties", "geom"}).WillReturnResult(3)
	mock.ExpectCommit()

	n, err := SavePostgres(context.Background(), mock, "indonesia-provinces.geojson", c)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePostgres_Empty(t *testing.T) {
	_, err := SavePostgres(context.Background(), nil, "none", &Collection{})
	assert.ErrorContains(t, err, "empty collection")
}

func TestSavePostgres_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "boundaries"`).
		WithArgs("countries").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"boundaries"}, []string{"collection", "properties", "geom"}).
		WillReturnError(fmt.Errorf("geometry constraint"))
	mock.ExpectRollback()

	c := &Collection{Features: []Feature{{Properties: map[string]any{"name": "X"}}}}
	_, err = SavePostgres(context.Background(), mock, "countries", c)
	assert.ErrorContains(t, err, `store collection "countries"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEncodeEWKB(t *testing.T) {
	poly := geom.NewPolygonFlat(geom.XY, []float64{0, 0, 2, 0, 2, 2, 0, 0}, []int{8})

	wkb, err := encodeEWKB(poly)
	require.NoError(t, err)
	g, err := ewkb.Unmarshal(wkb)
	require.NoError(t, err)
	assert.Equal(t, SRID, g.SRID())
	assert.Equal(t, 0, poly.SRID(), "input geometry is not modified")

	wkb, err = encodeEWKB(nil)
	require.NoError(t, err)
	assert.Nil(t, wkb)

	_, err = encodeEWKB(geom.NewPointFlat(geom.XY, []float64{1, 2}))
	assert.Error(t, err)
}
