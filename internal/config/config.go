package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Config holds process configuration, bound from LMS_* environment variables.
type Config struct {
	Environment string `mapstructure:"environment"`
	HTTPAddr    string `mapstructure:"http_addr"`

	DatabaseDSN string `mapstructure:"database_dsn"`

	// Cron expressions for the billing scheduler.
	GenerateSchedule string `mapstructure:"generate_schedule"`
	OverdueSchedule  string `mapstructure:"overdue_schedule"`
	SchedulerEnabled bool   `mapstructure:"scheduler_enabled"`

	// Due day applied to new billing profiles that do not set one.
	DefaultDueDay int `mapstructure:"default_due_day"`

	SeedDemoData bool `mapstructure:"seed_demo_data"`

	Tracing TracingConfig `mapstructure:"tracing"`
}

type TracingConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	ExporterEndpoint string  `mapstructure:"exporter_endpoint"`
	ExporterProtocol string  `mapstructure:"exporter_protocol"`
	SamplingRatio    float64 `mapstructure:"sampling_ratio"`
	ServiceVersion   string  `mapstructure:"service_version"`
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load binds configuration from the environment with sane defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "development")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database_dsn", "postgres://localhost:5432/lms?sslmode=disable")
	v.SetDefault("generate_schedule", "0 2 1 * *")
	v.SetDefault("overdue_schedule", "0 3 * * *")
	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("default_due_day", 10)
	v.SetDefault("seed_demo_data", false)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter_protocol", "http")
	v.SetDefault("tracing.sampling_ratio", 1.0)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Module provides Config to the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
)
