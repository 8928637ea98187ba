package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/akhenakh/tardis"
)

// Config holds all configuration for the tardis command.
type Config struct {
	Gravity string `mapstructure:"gravity" validate:"oneof=wgs72old wgs72 wgs84"`
	OpsMode string `mapstructure:"opsmode" validate:"oneof=afspc improved"`
	// Workers bounds batch propagation; 0 selects GOMAXPROCS.
	Workers int           `mapstructure:"workers" validate:"gte=0"`
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Track   TrackConfig   `mapstructure:"track"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// CatalogConfig locates the element sets to load.
type CatalogConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format" validate:"oneof=tle omm"`
}

// TrackConfig holds ground track sampling defaults.
type TrackConfig struct {
	Step time.Duration `mapstructure:"step" validate:"gt=0"`
}

// MetricsConfig holds the Prometheus listener address used by watch.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

var validate = validator.New()

// Validate rejects unknown enum values and non-positive durations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: invalid %s %q (%s=%s)", strings.ToLower(fe.Namespace()), fmt.Sprint(fe.Value()), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SessionOptions translates the gravity and opsmode settings.
func (c *Config) SessionOptions() ([]tardis.Option, error) {
	g, err := tardis.ParseGravityModel(c.Gravity)
	if err != nil {
		return nil, err
	}
	m, err := tardis.ParseOpsMode(c.OpsMode)
	if err != nil {
		return nil, err
	}
	return []tardis.Option{tardis.WithGravityModel(g), tardis.WithOpsMode(m)}, nil
}
