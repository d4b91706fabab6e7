package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings. JWTSecret signs and
// verifies the identity tokens presented by clients.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// TaskConfig controls the background task queue and worker pool.
type TaskConfig struct {
	// QueueSize is the maximum number of pending jobs; producers block
	// once it is reached.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// WorkerCount is the fixed size of the worker pool.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// WaitPollIntervalMS is the delay, in milliseconds, between polls
	// when one task waits on another's completion.
	WaitPollIntervalMS int `mapstructure:"wait_poll_interval_ms" validate:"required,gt=0"`
}
