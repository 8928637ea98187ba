package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TARDIS_LOG_LEVEL.
const EnvPrefix = "TARDIS"

// Load reads defaults, then the config file, then TARDIS_* environment
// variables. An empty path searches for tardis.yaml in the working directory,
// $HOME/.config/tardis and /etc/tardis; a missing file is not an error in
// that case. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tardis")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "tardis"))
		}
		v.AddConfigPath("/etc/tardis")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.Gravity = strings.ToLower(strings.TrimSpace(cfg.Gravity))
	cfg.OpsMode = strings.ToLower(strings.TrimSpace(cfg.OpsMode))
	cfg.Catalog.Format = strings.ToLower(strings.TrimSpace(cfg.Catalog.Format))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Gravity: "wgs72",
		OpsMode: "improved",
		Log:     LogConfig{Level: "info", Format: "json"},
		Catalog: CatalogConfig{Format: "tle"},
		Track:   TrackConfig{Step: time.Minute},
		Metrics: MetricsConfig{Addr: ":9090"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("gravity", d.Gravity)
	v.SetDefault("opsmode", d.OpsMode)
	v.SetDefault("workers", d.Workers)

	// Logging defaults
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.format", d.Catalog.Format)
	v.SetDefault("track.step", d.Track.Step)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}
