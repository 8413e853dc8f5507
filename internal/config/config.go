package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/geolayer/internal/boundary"
	"github.com/sells-group/geolayer/internal/colormap"
	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/store"
	"github.com/sells-group/geolayer/pkg/openmeteo"
)

// Config holds the full application configuration.
type Config struct {
	Store      store.Config      `yaml:"store" mapstructure:"store"`
	Boundaries []boundary.Source `yaml:"boundaries" mapstructure:"boundaries"`
	Catalog    CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	Weather    WeatherConfig     `yaml:"weather" mapstructure:"weather"`
	Ranking    RankingConfig     `yaml:"ranking" mapstructure:"ranking"`
	Colors     ColorsConfig      `yaml:"colors" mapstructure:"colors"`
	Server     ServerConfig      `yaml:"server" mapstructure:"server"`
	Log        LogConfig         `yaml:"log" mapstructure:"log"`
}

// CatalogConfig configures region identifier resolution.
type CatalogConfig struct {
	CandidateKeys    []string `yaml:"candidate_keys" mapstructure:"candidate_keys"`
	NameKeys         []string `yaml:"name_keys" mapstructure:"name_keys"`
	AliasesFile      string   `yaml:"aliases_file" mapstructure:"aliases_file"`
	ProvinceGeometry string   `yaml:"province_geometry" mapstructure:"province_geometry"`
}

// Options converts the catalog section. aliases come from AliasesFile and
// are loaded by the caller.
func (c CatalogConfig) Options(aliases map[string]string) region.Options {
	return region.Options{
		CandidateKeys:    c.CandidateKeys,
		NameKeys:         c.NameKeys,
		Aliases:          aliases,
		ProvinceGeometry: c.ProvinceGeometry,
	}
}

// WeatherConfig configures the forecast client.
type WeatherConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	RateLimit   float64       `yaml:"rate_limit" mapstructure:"rate_limit"`
	CacheSize   int           `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTL    time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	Resolution  float64       `yaml:"resolution" mapstructure:"resolution"`
	TimeoutSecs int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retry       RetryConfig   `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig configures retries of transient upstream failures.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// RankingConfig configures ranking views.
type RankingConfig struct {
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
}

// ColorsConfig configures color schemes. Custom schemes need 7 or 10
// colors.
type ColorsConfig struct {
	DefaultScheme string              `yaml:"default_scheme" mapstructure:"default_scheme"`
	Schemes       map[string][]string `yaml:"schemes" mapstructure:"schemes"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional; existing environment variables win.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOLAYER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", store.DriverFile)
	v.SetDefault("store.dir", "data/layers")
	v.SetDefault("store.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.timeout_secs", 30)
	v.SetDefault("catalog.candidate_keys", region.DefaultCandidateKeys())
	v.SetDefault("catalog.aliases_file", "")
	v.SetDefault("catalog.province_geometry", region.DefaultProvinceGeometry)
	v.SetDefault("weather.enabled", true)
	v.SetDefault("weather.base_url", openmeteo.DefaultBaseURL)
	v.SetDefault("weather.rate_limit", 5.0)
	v.SetDefault("weather.cache_size", 64)
	v.SetDefault("weather.cache_ttl", openmeteo.DefaultCacheTTL)
	v.SetDefault("weather.resolution", 15.0)
	v.SetDefault("weather.timeout_secs", 30)
	v.SetDefault("weather.retry.max_attempts", 3)
	v.SetDefault("weather.retry.initial_backoff_ms", 500)
	v.SetDefault("weather.retry.max_backoff_ms", 10000)
	v.SetDefault("ranking.page_size", 10)
	v.SetDefault("colors.default_scheme", colormap.DefaultScheme)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs. All problems are
// reported together.
func (c *Config) Validate(mode string) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch mode {
	case "serve", "correlate", "rank", "weather":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case store.DriverFile:
		if c.Store.Dir == "" {
			add("store.dir is required for the file driver")
		}
	case store.DriverPostgres, store.DriverSQLite:
		if c.Store.DSN == "" {
			add("store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		add("store.driver %q is not one of file, postgres, sqlite", c.Store.Driver)
	}

	for i, b := range c.Boundaries {
		if b.Path == "" && b.Collection == "" {
			add("boundaries[%d] needs a path or a collection", i)
		}
		if b.Collection != "" && c.Store.Driver != store.DriverPostgres {
			add("boundaries[%d].collection requires the postgres store driver", i)
		}
	}

	if c.Ranking.PageSize < 1 {
		add("ranking.page_size must be >= 1")
	}
	for name, colors := range c.Colors.Schemes {
		if n := len(colors); n != 7 && n != 10 {
			add("colors.schemes.%s has %d colors, want 7 or 10", name, n)
		}
	}

	if mode == "serve" && c.Server.Port <= 0 {
		add("server.port must be > 0")
	}
	if mode == "weather" || (mode == "serve" && c.Weather.Enabled) {
		if c.Weather.BaseURL == "" {
			add("weather.base_url is required")
		}
		if c.Weather.Resolution <= 0 {
			add("weather.resolution must be > 0")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
