package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Storage backends for progress persistence.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string     `mapstructure:"env"`            // current application environment (local, production)
	TelegramAPIToken string     `mapstructure:"-"`              // Telegram API token loaded from environment
	WordsCSVPath     string     `mapstructure:"words_csv_path"` // path to the vocabulary CSV
	ProgressPath     string     `mapstructure:"progress_path"`  // path to the JSON progress file
	HistoryPath      string     `mapstructure:"history_path"`   // path to the JSON session archive
	Storage          string     `mapstructure:"storage"`        // progress backend: file or postgres
	DB               DB         `mapstructure:"database"`       // database configuration section
	Session          Session    `mapstructure:"session"`        // session building policy
	Difficulty       Difficulty `mapstructure:"difficulty"`     // difficulty score policy
	Reminder         Reminder   `mapstructure:"reminder"`       // due-review reminder
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // connection string loaded from environment
	MaxConnections  int32         `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Session configures the session builder.
type Session struct {
	Size           int     `mapstructure:"size"`            // queue budget per session
	NewWordsRatio  float64 `mapstructure:"new_words_ratio"` // share of brand-new words in a session
	FreezeMastered bool    `mapstructure:"freeze_mastered"` // exclude mastered words from review pools
	MasteryStreak  int     `mapstructure:"mastery_streak"`  // streak at which a word counts as mastered
}

// Difficulty configures the difficulty score policy.
type Difficulty struct {
	Increment float64 `mapstructure:"increment"` // added on an incorrect answer
	Decay     float64 `mapstructure:"decay"`     // subtracted on a correct answer
	Max       float64 `mapstructure:"max"`       // score upper bound
	Threshold float64 `mapstructure:"threshold"` // score at which a word counts as difficult
}

// Reminder configures the due-review nudge.
type Reminder struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("words_csv_path", "assets/words.csv")
	v.SetDefault("progress_path", "data/progress.json")
	v.SetDefault("history_path", "data/history.json")
	v.SetDefault("storage", StorageFile)
	v.SetDefault("database.max_connections", 5)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("session.size", 20)
	v.SetDefault("session.new_words_ratio", 0.3)
	v.SetDefault("session.freeze_mastered", false)
	v.SetDefault("session.mastery_streak", 3)
	v.SetDefault("difficulty.increment", 2)
	v.SetDefault("difficulty.decay", 1)
	v.SetDefault("difficulty.max", 10)
	v.SetDefault("difficulty.threshold", 7)
	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.interval", "1h")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	// The database URL is only required for the postgres backend.
	cfg.DB.URL = v.GetString("database_url")
	if cfg.Storage == StoragePostgres && cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}
	if cfg.Storage != StorageFile && cfg.Storage != StoragePostgres {
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage)
	}

	return &cfg, nil
}
