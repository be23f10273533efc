package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"mapped-wrap/internal/resolve"
	"mapped-wrap/internal/store/file"
	"mapped-wrap/internal/store/redis"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config holds the scene, persistence and output settings of a mapwrap run.
type Config struct {
	// Scene and persistence
	Scene         string `json:"scene" yaml:"scene"`
	Store         string `json:"store" yaml:"store"`
	StoreDir      string `json:"store_dir" yaml:"store_dir"`
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`
	RedisPrefix   string `json:"redis_prefix" yaml:"redis_prefix"`

	// Deformation
	Tolerance      *float64 `json:"tolerance" yaml:"tolerance"` // nil means the default; 0 is exact matching
	LinearEnvelope bool     `json:"linear_envelope" yaml:"linear_envelope"`

	// Output
	OutputDir   string `json:"output_dir" yaml:"output_dir"`
	Workers     int    `json:"workers" yaml:"workers"`
	RenderSize  int    `json:"render_size" yaml:"render_size"`
	Supersample int    `json:"supersample" yaml:"supersample"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Load reads a config file. YAML is used for .yaml and .yml, JSON otherwise.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty; a non-nil Tolerance flag
// always wins, so 0 can be requested.
func (c *Config) Resolve(flags Flags) error {
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.Store != "" {
		c.Store = flags.Store
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Tolerance != nil {
		c.Tolerance = flags.Tolerance
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.Store == "" {
		c.Store = StoreFile
	}
	if c.Store != StoreFile && c.Store != StoreRedis {
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.StoreDir == "" {
		c.StoreDir = file.DefaultDir
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = redis.DefaultPrefix
	}

	if c.Tolerance == nil {
		tol := resolve.DefaultTolerance
		c.Tolerance = &tol
	}
	if *c.Tolerance < 0 || math.IsNaN(*c.Tolerance) {
		return fmt.Errorf("config: negative tolerance %g", *c.Tolerance)
	}

	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.RenderSize <= 0 {
		c.RenderSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Scene     string
	Store     string
	OutputDir string
	Workers   int
	Tolerance *float64
	LogLevel  string
}
