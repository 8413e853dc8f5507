package boundary

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"ISO3166-1-Alpha-3": "IDN", "ISO3166-1-Alpha-2": "ID", "name": "Indonesia"},
     "geometry": {"type": "Polygon", "coordinates": [[[95,-11],[141,-11],[141,6],[95,6],[95,-11]]]}},
    {"type": "Feature",
     "properties": {"ISO3166-1-Alpha-3": "XXX", "name": "Broken"},
     "geometry": {"type": "Polygon", "coordinates": "not-an-array"}},
    {"type": "Feature",
     "properties": {"code": 42},
     "geometry": {"type": "Point", "coordinates": [10, 20]}}
  ]
}`

func TestDecodeGeoJSON(t *testing.T) {
	c, err := DecodeGeoJSON(strings.NewReader(sampleCollection), "countries.geojson")
	require.NoError(t, err)

	assert.Equal(t, "countries.geojson", c.ID)
	require.Equal(t, 3, c.Len())

	assert.Equal(t, "IDN", c.Features[0].Property("ISO3166-1-Alpha-3"))
	assert.NotNil(t, c.Features[0].Geometry)

	assert.Equal(t, "Broken", c.Features[1].Property("name"))
	assert.Nil(t, c.Features[1].Geometry)

	assert.Equal(t, "42", c.Features[2].Property("code"))
	assert.Equal(t, "", c.Features[2].Property("missing"))
}

func TestDecodeGeoJSON_NotACollection(t *testing.T) {
	_, err := DecodeGeoJSON(strings.NewReader(`{"type":"Feature"}`), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected FeatureCollection")
}

func TestDecodeGeoJSON_InvalidJSON(t *testing.T) {
	_, err := DecodeGeoJSON(strings.NewReader(`{`), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode feature collection")
}

func TestLoadGeoJSONFile_Missing(t *testing.T) {
	_, err := LoadGeoJSONFile("/nonexistent/countries.geojson")
	require.Error(t, err)
}

func TestCollectionLen_Nil(t *testing.T) {
	var c *Collection
	assert.Equal(t, 0, c.Len())
}

func TestPolygonToMultiPolygon(t *testing.T) {
	p := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 4},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0},
			{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 5},
		},
	}
	g := polygonToMultiPolygon(p)
	require.NotNil(t, g)
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestPolygonToMultiPolygon_Empty(t *testing.T) {
	assert.Nil(t, polygonToMultiPolygon(nil))
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
}

func TestShapeToGeom_Point(t *testing.T) {
	g := shapeToGeom(&shp.Point{X: 3, Y: 4})
	require.NotNil(t, g)
	assert.Equal(t, []float64{3, 4}, g.FlatCoords())
	assert.Nil(t, shapeToGeom(&shp.PolyLine{}))
}

func TestLoadPostgres(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	poly := geom.NewPolygonFlat(geom.XY, []float64{0, 0, 2, 0, 2, 2, 0, 0}, []int{8}).SetSRID(4326)
	wkb, err := ewkb.Marshal(poly, ewkb.NDR)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT properties, ST_AsEWKB\(geom\)`).
		WithArgs("provinces").
		WillReturnRows(pgxmock.NewRows([]string{"properties", "geom"}).
			AddRow([]byte(`{"Propinsi":"ACEH"}`), wkb).
			AddRow([]byte(`{"Propinsi":"BALI"}`), []byte{0x01, 0x02}))

	c, err := LoadPostgres(context.Background(), mock, "provinces")
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "ACEH", c.Features[0].Property("Propinsi"))
	assert.NotNil(t, c.Features[0].Geometry)
	assert.Nil(t, c.Features[1].Geometry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPostgres_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT properties`).
		WithArgs("provinces").
		WillReturnError(fmt.Errorf("connection refused"))

	_, err = LoadPostgres(context.Background(), mock, "provinces")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query collection")
}

func TestLoadPostgres_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT properties`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"properties", "geom"}))

	_, err = LoadPostgres(context.Background(), mock, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}
