package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Study   StudyConfig   `mapstructure:"study"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig selects and tunes the persistence collaborator.
// The sqlite driver is the local offline store; the postgres driver is
// the cloud mirror. Both store decks as opaque blobs.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"       validate:"required,oneof=sqlite postgres"`
	SQLitePath  string `mapstructure:"sqlite_path"  validate:"required_if=Driver sqlite"`
	PostgresURL string `mapstructure:"postgres_url" validate:"required_if=Driver postgres"`

	// Background saver tuning.
	SaveWorkers   int `mapstructure:"save_workers"    validate:"gte=1,lte=16"`
	SaveQueueSize int `mapstructure:"save_queue_size" validate:"gte=1"`
}

// StudyConfig exposes the tunable scheduling parameters.
type StudyConfig struct {
	FirstIntervalDays  int `mapstructure:"first_interval_days"  validate:"gte=1"`
	SecondIntervalDays int `mapstructure:"second_interval_days" validate:"gte=1"`
	MasteryThreshold   int `mapstructure:"mastery_threshold"    validate:"gte=1"`
}
