package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"  validate:"required"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains the single-user authentication settings. PasswordHash
// is a bcrypt hash of the user's password; JWTSecret signs session tokens.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"           validate:"required,min=32"`
	PasswordHash       string `mapstructure:"password_hash"        validate:"required"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours" validate:"gte=1,lte=720"`
}

// SchedulerConfig controls the resurfacing jobs: how often each scan runs
// and when repeated postponement triggers an intervention.
type SchedulerConfig struct {
	DeferredActivationInterval time.Duration `mapstructure:"deferred_activation_interval" validate:"required"`
	DelegatedFollowUpInterval  time.Duration `mapstructure:"delegated_follow_up_interval" validate:"required"`
	SomedayReviewInterval      time.Duration `mapstructure:"someday_review_interval"      validate:"required"`
	InterventionScanInterval   time.Duration `mapstructure:"intervention_scan_interval"   validate:"required"`

	// PostponeThreshold is the postpone count that triggers an intervention.
	PostponeThreshold int `mapstructure:"postpone_threshold" validate:"gte=1"`
	// RepeatReasonThreshold is the lower threshold applied when the same
	// reason is given for consecutive deferrals.
	RepeatReasonThreshold int `mapstructure:"repeat_reason_threshold" validate:"gte=1"`
}

// GenerationConfig contains the optional LLM settings for subtask breakdown
// suggestions. Suggestions are disabled when no API key is configured.
type GenerationConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}
