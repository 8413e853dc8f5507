package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/boundary"
	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/store"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// No config.yaml in an empty temp dir.
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, store.DriverFile, cfg.Store.Driver)
	assert.Equal(t, "data/layers", cfg.Store.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, region.DefaultCandidateKeys(), cfg.Catalog.CandidateKeys)
	assert.Equal(t, region.DefaultProvinceGeometry, cfg.Catalog.ProvinceGeometry)
	assert.True(t, cfg.Weather.Enabled)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.Weather.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Weather.CacheTTL)
	assert.InDelta(t, 15.0, cfg.Weather.Resolution, 0)
	assert.Equal(t, 3, cfg.Weather.Retry.MaxAttempts)
	assert.Equal(t, 10, cfg.Ranking.PageSize)
	assert.Equal(t, "ylorrd", cfg.Colors.DefaultScheme)
	assert.Empty(t, cfg.Boundaries)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  dsn: layers.db
log:
  level: debug
  format: console
server:
  port: 9090
boundaries:
  - path: geo/countries.geojson
  - id: indonesia-provinces.geojson
    path: geo/idn_provinces.shp
catalog:
  aliases_file: aliases.yaml
weather:
  cache_ttl: 10m
  resolution: 7.5
colors:
  schemes:
    Sunset: ["#1", "#2", "#3", "#4", "#5", "#6", "#7"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, store.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "layers.db", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []boundary.Source{
		{Path: "geo/countries.geojson"},
		{ID: "indonesia-provinces.geojson", Path: "geo/idn_provinces.shp"},
	}, cfg.Boundaries)
	assert.Equal(t, "aliases.yaml", cfg.Catalog.AliasesFile)
	assert.Equal(t, 10*time.Minute, cfg.Weather.CacheTTL)
	assert.InDelta(t, 7.5, cfg.Weather.Resolution, 0)
	assert.Len(t, cfg.Colors.Schemes["sunset"], 7)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Ranking.PageSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("GEOLAYER_STORE_DRIVER", "postgres")
	t.Setenv("GEOLAYER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, store.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("GEOLAYER_SERVER_PORT", "3000")
	t.Setenv("GEOLAYER_WEATHER_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.False(t, cfg.Weather.Enabled)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEOLAYER_RANKING_PAGE_SIZE=25\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("GEOLAYER_RANKING_PAGE_SIZE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Ranking.PageSize)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0o644))

	_, err := Load()
	assert.ErrorContains(t, err, "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = store.DriverFile
	cfg.Store.Dir = "data/layers"
	cfg.Server.Port = 8080
	cfg.Ranking.PageSize = 10
	cfg.Weather.Enabled = true
	cfg.Weather.BaseURL = "https://api.open-meteo.com/v1/forecast"
	cfg.Weather.Resolution = 15
	return cfg
}

func TestValidateServe_Valid(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateStore(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		dir    string
		dsn    string
		want   string
	}{
		{name: "file ok", driver: store.DriverFile, dir: "layers"},
		{name: "file no dir", driver: store.DriverFile, want: "store.dir is required"},
		{name: "postgres ok", driver: store.DriverPostgres, dsn: "postgres://localhost/geo"},
		{name: "postgres no dsn", driver: store.DriverPostgres, want: "store.dsn is required for the postgres driver"},
		{name: "sqlite no dsn", driver: store.DriverSQLite, want: "store.dsn is required for the sqlite driver"},
		{name: "unknown", driver: "mongo", want: `store.driver "mongo"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			cfg.Store.Driver, cfg.Store.Dir, cfg.Store.DSN = tt.driver, tt.dir, tt.dsn
			err := cfg.Validate("rank")
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Ranking.PageSize = 0
	cfg.Boundaries = []boundary.Source{{ID: "empty"}, {Collection: "countries"}}
	cfg.Colors.Schemes = map[string][]string{"short": {"#000", "#fff"}}

	err := cfg.Validate("correlate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ranking.page_size must be >= 1")
	assert.Contains(t, err.Error(), "boundaries[0] needs a path or a collection")
	assert.Contains(t, err.Error(), "boundaries[1].collection requires the postgres store driver")
	assert.Contains(t, err.Error(), "colors.schemes.short has 2 colors")
}

func TestValidateWeather(t *testing.T) {
	cfg := validDefaults()
	cfg.Weather.Resolution = 0

	assert.ErrorContains(t, cfg.Validate("weather"), "weather.resolution must be > 0")
	assert.NoError(t, cfg.Validate("rank"))

	cfg.Weather.Enabled = false
	assert.NoError(t, cfg.Validate("serve"))
}
