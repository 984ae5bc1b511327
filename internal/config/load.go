package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml in the working
// directory plus environment variables with the FOCAL_ prefix. Environment
// variables take precedence over file values. Returns a populated Config or
// an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FOCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.token_lifetime_hours", 24)

	v.SetDefault("scheduler.deferred_activation_interval", time.Hour)
	v.SetDefault("scheduler.delegated_follow_up_interval", time.Hour)
	v.SetDefault("scheduler.someday_review_interval", 7*24*time.Hour)
	v.SetDefault("scheduler.intervention_scan_interval", time.Hour)
	v.SetDefault("scheduler.postpone_threshold", 3)
	v.SetDefault("scheduler.repeat_reason_threshold", 2)

	v.SetDefault("generation.model_name", "gemini-2.0-flash")
}
