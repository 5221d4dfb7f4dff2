package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv    string `env:"NODE_ENV" envDefault:"development"`
	Port       string `env:"PORT" envDefault:"3210"`
	PathPrefix string `env:"PATH_PREFIX" envDefault:""`
	StaticDir  string `env:"STATIC_DIR" envDefault:""`

	WarehouseCode string `env:"WAREHOUSE_CODE" envDefault:"MAIN"`

	// LayoutFile points at the TOML description of rack spacing and zones.
	LayoutFile string `env:"LAYOUT_FILE" envDefault:"layout.toml"`

	// MoveConfirmation makes every drop wait for CONFIRM_MOVE.
	MoveConfirmation bool          `env:"MOVE_CONFIRMATION" envDefault:"false"`
	SnapMode         string        `env:"SNAP_MODE" envDefault:"center"`
	SnapGrid         float64       `env:"SNAP_GRID" envDefault:"1.0"`
	PersistTimeout   time.Duration `env:"PERSIST_TIMEOUT" envDefault:"5s"`
	// GenerateOnEmpty serves a procedural warehouse when no bins are stored.
	// Off by default: an empty store answers "no data".
	GenerateOnEmpty bool `env:"GENERATE_ON_EMPTY" envDefault:"false"`

	// Replenishment thresholds: at or below the minimum a move is critical,
	// at or below the reorder level a warning.
	ReplMinQty     float64 `env:"REPL_MIN_QTY" envDefault:"50"`
	ReplReorderQty float64 `env:"REPL_REORDER_QTY" envDefault:"100"`

	Database DatabaseConfig
	Cache    CacheConfig
	ERP      ERPConfig
	Log      LogConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     string `env:"PG_PORT" envDefault:"5432"`
	Username string `env:"PG_USERNAME" envDefault:"postgres"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE" envDefault:"eckwms3d"`
	DataPath string `env:"PG_EMBEDDED_DATA" envDefault:"./db_data"`
	Alter    bool   `env:"DB_ALTER" envDefault:"false"`
}

// CacheConfig selects the dataset cache backend. An empty RedisURL keeps
// the cache in process memory.
type CacheConfig struct {
	RedisURL string        `env:"REDIS_URL"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	Disabled bool          `env:"CACHE_DISABLED" envDefault:"false"`
}

// ERPConfig holds the XML-RPC stock source. Sync is off without a URL.
type ERPConfig struct {
	URL          string        `env:"ERP_URL"`
	Database     string        `env:"ERP_DB"`
	Username     string        `env:"ERP_USER"`
	Password     string        `env:"ERP_PASSWORD"`
	SyncInterval time.Duration `env:"ERP_SYNC_INTERVAL" envDefault:"15m"`
}

// LogConfig configures the named loggers.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout"`
	Path       string `env:"LOG_PATH" envDefault:"logs"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"14"`
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

// Load loads configuration from environment variables
func Load(files ...string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(files...)

	cfg := &Config{}
	for _, target := range []interface{}{cfg, &cfg.Database, &cfg.Cache, &cfg.ERP, &cfg.Log} {
		if err := env.Parse(target); err != nil {
			return nil, fmt.Errorf("parse environment: %w", err)
		}
	}
	if cfg.SnapMode != "center" && cfg.SnapMode != "grid" {
		return nil, fmt.Errorf("SNAP_MODE must be center or grid, got %q", cfg.SnapMode)
	}
	if cfg.ReplMinQty > cfg.ReplReorderQty {
		return nil, fmt.Errorf("REPL_MIN_QTY %g is above REPL_REORDER_QTY %g", cfg.ReplMinQty, cfg.ReplReorderQty)
	}
	return cfg, nil
}

// ERPEnabled reports whether stock sync is configured.
func (c *Config) ERPEnabled() bool { return c.ERP.URL != "" }
