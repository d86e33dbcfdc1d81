package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the settings of a run.
type Config struct {
	Engine      string  `env:"MEDIUMCACHE_ENGINE" envDefault:"lru"`
	Capacity    int     `env:"MEDIUMCACHE_CAPACITY" envDefault:"64"`
	Ways        int     `env:"MEDIUMCACHE_WAYS" envDefault:"4"`
	Medium      string  `env:"MEDIUMCACHE_MEDIUM" envDefault:"memory"`
	DB          string  `env:"MEDIUMCACHE_DB" envDefault:"mediumcache.db"`
	TraceDB     string  `env:"MEDIUMCACHE_TRACE_DB"`
	MonitorPort int     `env:"MEDIUMCACHE_MONITOR_PORT" envDefault:"0"`
	Keys        int     `env:"MEDIUMCACHE_KEYS" envDefault:"1024"`
	Ops         int     `env:"MEDIUMCACHE_OPS" envDefault:"100000"`
	WriteRatio  float64 `env:"MEDIUMCACHE_WRITE_RATIO" envDefault:"0.1"`
	PinRatio    float64 `env:"MEDIUMCACHE_PIN_RATIO" envDefault:"0"`
	Skew        float64 `env:"MEDIUMCACHE_SKEW" envDefault:"1.1"`
	Seed        int64   `env:"MEDIUMCACHE_SEED" envDefault:"1"`
	Verbose     bool    `env:"MEDIUMCACHE_VERBOSE" envDefault:"false"`
}

// LoadConfig reads the env file, if it exists, and then the environment.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	var cfg Config

	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	err := env.Parse(&cfg)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks that the settings describe a runnable workload.
func (c Config) Validate() error {
	var errs []error

	switch c.Engine {
	case "lru", "setassoc":
	default:
		errs = append(errs, fmt.Errorf("unknown engine %q", c.Engine))
	}

	switch c.Medium {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown medium %q", c.Medium))
	}

	if c.Capacity < 0 {
		errs = append(errs, errors.New("capacity must not be negative"))
	}

	if c.Engine == "setassoc" && c.Ways < 1 {
		errs = append(errs, errors.New("ways must be at least 1"))
	}

	if c.Keys < 1 {
		errs = append(errs, errors.New("keys must be at least 1"))
	}

	if c.Ops < 0 {
		errs = append(errs, errors.New("ops must not be negative"))
	}

	if c.WriteRatio < 0 || c.WriteRatio > 1 {
		errs = append(errs, errors.New("write ratio must be in [0, 1]"))
	}

	if c.PinRatio < 0 || c.PinRatio > 1 {
		errs = append(errs, errors.New("pin ratio must be in [0, 1]"))
	}

	if c.Skew <= 1 {
		errs = append(errs, errors.New("skew must be greater than 1"))
	}

	return errors.Join(errs...)
}
