package tonetrace

import "github.com/MiguelRiosT/tone-trace/pkg/tonetrace/fingerprint"

// Config holds service-level settings. The embedded engine config carries
// the analysis parameters.
type Config struct {
	DBPath     string
	TempDir    string
	SampleRate int
	Engine     fingerprint.Config
	Logger     Logger
	Storage    Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithEngineConfig(cfg fingerprint.Config) Option {
	return func(c *Config) {
		c.Engine = cfg
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
		DBPath:     "tonetrace.sqlite3",
		TempDir:    "/tmp",
		SampleRate: 44100,
		Engine:     fingerprint.DefaultConfig(),
	}
}
