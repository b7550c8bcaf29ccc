package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "TTM_CONFIG"

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// TTM holds the configuration shared by all binaries.
type TTM struct {
	LogLevel  string          `yaml:"log_level"`
	Database  DatabaseConfig  `yaml:"database"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Presets   PresetsConfig   `yaml:"presets"`
	Generator GeneratorConfig `yaml:"generator"`
	Atlas     AtlasConfig     `yaml:"atlas"`
}

// DatabaseConfig selects and configures the content store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres | sqlite

	// PostgreSQL
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	// SQLite
	Path string `yaml:"path"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// ResolverConfig bounds import chain walks.
type ResolverConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// PresetsConfig locates the generated preset files.
type PresetsConfig struct {
	Version       string `yaml:"version"`
	PresetsFile   string `yaml:"presets_file"`
	NodeOrderFile string `yaml:"node_order_file"`
}

// GeneratorConfig drives cmd/gentrees.
type GeneratorConfig struct {
	TalentsJSON string `yaml:"talents_json"`
	// Grid geometry of the source data, in source pixels.
	ClassOffsetX int `yaml:"class_offset_x"`
	SpecOffsetX  int `yaml:"spec_offset_x"`
	OffsetY      int `yaml:"offset_y"`
	CellSize     int `yaml:"cell_size"`
	// Empty lists select everything.
	Classes []string `yaml:"classes"`
	Specs   []string `yaml:"specs"`
	Workers int      `yaml:"workers"`
}

// AtlasConfig drives icon packing.
type AtlasConfig struct {
	Enabled     bool   `yaml:"enabled"`
	IconDir     string `yaml:"icon_dir"`
	DefaultIcon string `yaml:"default_icon"`
	TileSize    int    `yaml:"tile_size"`
	ImageFile   string `yaml:"image_file"`
	MetaFile    string `yaml:"meta_file"`
}

// DefaultTTM returns config with sensible defaults.
func DefaultTTM() TTM {
	return TTM{
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver:   DriverSQLite,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "ttm",
			Password: "ttm",
			DBName:   "ttm",
			SSLMode:  "disable",
			Path:     "ttm.db",
		},
		Resolver: ResolverConfig{MaxDepth: 64},
		Presets: PresetsConfig{
			Version:       "1.3.8",
			PresetsFile:   "presets.txt",
			NodeOrderFile: "node_id_orders.txt",
		},
		Generator: GeneratorConfig{
			TalentsJSON:  "talents.json",
			ClassOffsetX: 1200,
			SpecOffsetX:  9000,
			OffsetY:      1200,
			CellSize:     300,
			Workers:      4,
		},
		Atlas: AtlasConfig{
			IconDir:     "icons",
			DefaultIcon: "default.png",
			TileSize:    40,
			ImageFile:   "icons_packed.png",
			MetaFile:    "icons_packed_meta.txt",
		},
	}
}

// LoadTTM loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadTTM(path string) (TTM, error) {
	cfg := DefaultTTM()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Path returns $TTM_CONFIG when set, else fallback.
func Path(fallback string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return fallback
}

// Validate checks values the binaries cannot work around.
func (c TTM) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Resolver.MaxDepth < 0 {
		return fmt.Errorf("resolver.max_depth must not be negative, got %d", c.Resolver.MaxDepth)
	}
	if c.Generator.CellSize <= 0 {
		return fmt.Errorf("generator.cell_size must be positive, got %d", c.Generator.CellSize)
	}
	if c.Atlas.TileSize <= 0 {
		return fmt.Errorf("atlas.tile_size must be positive, got %d", c.Atlas.TileSize)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c TTM) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
