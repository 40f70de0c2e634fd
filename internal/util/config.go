package util

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment              string        `mapstructure:"ENVIRONMENT"`
	LogLevel                 string        `mapstructure:"LOG_LEVEL"`
	HTTPServerAddress        string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	EventAudience            string        `mapstructure:"EVENT_AUDIENCE"`
	EventInvokerEmail        string        `mapstructure:"EVENT_INVOKER_EMAIL"`
	EventAuthDisabled        bool          `mapstructure:"EVENT_AUTH_DISABLED"`
	RedisServerAddress       string        `mapstructure:"REDIS_SERVER_ADDRESS"`
	FirebaseProjectID        string        `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile  string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseCredentialsJSON  string        `mapstructure:"FIREBASE_CREDENTIALS_JSON"`
	CallsCollection          string        `mapstructure:"CALLS_COLLECTION"`
	UsersCollection          string        `mapstructure:"USERS_COLLECTION"`
	FirestoreListenerEnabled bool          `mapstructure:"FIRESTORE_LISTENER_ENABLED"`
	ListenerCatchUpWindow    time.Duration `mapstructure:"LISTENER_CATCHUP_WINDOW"`
	WorkerConcurrency        int           `mapstructure:"WORKER_CONCURRENCY"`
	NotifyMaxRetry           int           `mapstructure:"NOTIFY_MAX_RETRY"`
	TaskRetention            time.Duration `mapstructure:"TASK_RETENTION"`
	QueueMonitorInterval     time.Duration `mapstructure:"QUEUE_MONITOR_INTERVAL"`
	FCMDryRun                bool          `mapstructure:"FCM_DRY_RUN"`
}

// IsProduction reports whether logs should be emitted as JSON.
func (config Config) IsProduction() bool {
	return config.Environment == "production"
}

// LoadConfig reads configuration from file or environment variables.
// The file is optional; environment variables always take precedence.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	// Set defaults for non-sensitive config
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("EVENT_AUDIENCE", "")
	v.SetDefault("EVENT_INVOKER_EMAIL", "")
	v.SetDefault("EVENT_AUTH_DISABLED", false)
	v.SetDefault("CALLS_COLLECTION", "calls")
	v.SetDefault("USERS_COLLECTION", "users")
	v.SetDefault("FIRESTORE_LISTENER_ENABLED", true)
	v.SetDefault("LISTENER_CATCHUP_WINDOW", "1m")
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("NOTIFY_MAX_RETRY", 5)
	v.SetDefault("TASK_RETENTION", "24h")
	v.SetDefault("QUEUE_MONITOR_INTERVAL", "1m")
	v.SetDefault("FCM_DRY_RUN", false)

	// Keys without a default must be bound so Unmarshal sees them in the environment.
	for _, key := range []string{
		"REDIS_SERVER_ADDRESS",
		"FIREBASE_PROJECT_ID",
		"FIREBASE_CREDENTIALS_FILE",
		"FIREBASE_CREDENTIALS_JSON",
	} {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	// Prefer environment variables over config file
	v.AutomaticEnv()

	// Load config file
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err = v.ReadInConfig(); err != nil {
				return
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			err = statErr
			return
		}
	}

	// Unmarshal config into struct
	err = v.UnmarshalExact(&config)
	if err != nil {
		return
	}

	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.RedisServerAddress == "" {
		return fmt.Errorf("REDIS_SERVER_ADDRESS is required")
	}
	if config.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if config.EventAudience == "" && !config.EventAuthDisabled {
		return fmt.Errorf("EVENT_AUDIENCE is required unless EVENT_AUTH_DISABLED=true")
	}
	if config.CallsCollection == "" || config.UsersCollection == "" {
		return fmt.Errorf("CALLS_COLLECTION and USERS_COLLECTION must not be empty")
	}
	if config.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", config.WorkerConcurrency)
	}
	if config.NotifyMaxRetry < 0 {
		return fmt.Errorf("NOTIFY_MAX_RETRY must not be negative, got %d", config.NotifyMaxRetry)
	}
	if config.ListenerCatchUpWindow < 0 {
		return fmt.Errorf("LISTENER_CATCHUP_WINDOW must not be negative")
	}
	if config.QueueMonitorInterval <= 0 {
		return fmt.Errorf("QUEUE_MONITOR_INTERVAL must be positive")
	}

	return nil
}
