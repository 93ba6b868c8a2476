package spectrodft

import (
	"os"
	"runtime"
)

type Config struct {
	DBPath    string
	OutputDir string
	TempDir   string
	Workers   int
	Catalog   bool
	Logger    Logger
	Storage   Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithOutputDir sets where batch runs write their matrices.
func WithOutputDir(dir string) Option {
	return func(c *Config) {
		c.OutputDir = dir
	}
}

// WithTempDir sets where converted inputs are written.
func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

// WithWorkers sets the frame worker pool size of every run.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithCatalog turns recording of runs in the database on or off.
func WithCatalog(enabled bool) Option {
	return func(c *Config) {
		c.Catalog = enabled
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:    envOr("SPECTRO_DB_PATH", "spectrodft.sqlite3"),
		OutputDir: envOr("SPECTRO_OUTPUT_DIR", "."),
		TempDir:   os.TempDir(),
		Workers:   runtime.NumCPU(),
		Catalog:   true,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
