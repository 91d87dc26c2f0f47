// Package config loads codelint's runtime configuration: concurrency
// bound, per-batch timeout, analyzer binary overrides, and cache
// settings. Sources, in increasing priority: built-in defaults, a YAML
// file, then CODELINT_-prefixed environment variables and bound flags.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	Concurrency  int           `mapstructure:"concurrency"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	BatchSize    int           `mapstructure:"batch_size"`
	SpawnRate    float64       `mapstructure:"spawn_rate"` // subprocess spawns/sec; 0 disables throttling

	Analyzers AnalyzersConfig `mapstructure:"analyzers"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// AnalyzersConfig lets an operator point at non-PATH binaries and
// choose which drivers are active by default.
type AnalyzersConfig struct {
	ESLintPath  string   `mapstructure:"eslint_path"`
	BanditPath  string   `mapstructure:"bandit_path"`
	SemgrepPath string   `mapstructure:"semgrep_path"`
	Enabled     []string `mapstructure:"enabled"`
}

// CacheConfig controls the optional on-disk finding cache.
type CacheConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Path        string `mapstructure:"path"`
	HorizonDays int    `mapstructure:"horizon_days"`
}

// LoadDefaults returns a Config populated with built-in defaults only,
// with no file or environment layered on.
func LoadDefaults() *Config {
	v := newViper()
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from configPath (if non-empty and present),
// then overlays CODELINT_-prefixed environment variables and any bound
// flags. A missing configPath is not an error — defaults apply.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	v.SetEnvPrefix("codelint")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("concurrency", 3)
	v.SetDefault("batch_timeout", 60*time.Second)
	v.SetDefault("batch_size", 0) // 0 -> executor.DefaultBatchSize()
	v.SetDefault("spawn_rate", 0) // 0 -> no spawn-rate limiting

	v.SetDefault("analyzers.eslint_path", "eslint")
	v.SetDefault("analyzers.bandit_path", "bandit")
	v.SetDefault("analyzers.semgrep_path", "semgrep")
	v.SetDefault("analyzers.enabled", []string{"eslint", "bandit", "patterns"})

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.horizon_days", 7)

	return v
}
