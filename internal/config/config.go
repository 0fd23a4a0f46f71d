package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Classifier transports.
const (
	ClassifierModeHTTP  = "http"
	ClassifierModeGRPC  = "grpc"
	ClassifierModeLocal = "local"
)

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

// DSN builds the gorm postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s application_name=epif",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// Config holds the application configuration
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	LogFormat   string
	AssetsDir   string
	CORSOrigins []string

	ClassifierMode        string
	ClassifierURL         string
	ClassifierGRPCAddress string
	ClassifierModelPath   string
	ClassifierTimeout     time.Duration

	EnableDB bool
	Database DatabaseConfig

	RedisURL           string
	PredictionCacheTTL time.Duration

	JWTSecret string

	RetentionDays     int
	RetentionSchedule string

	AMQPURL      string
	AMQPQueue    string
	EventWorkers int
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is read first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		AssetsDir:   os.Getenv("ASSETS_DIR"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		ClassifierMode:        strings.ToLower(getEnv("CLASSIFIER_MODE", ClassifierModeHTTP)),
		ClassifierURL:         getEnv("CLASSIFIER_URL", "http://localhost:8000"),
		ClassifierGRPCAddress: getEnv("CLASSIFIER_GRPC_ADDRESS", "localhost:50051"),
		ClassifierModelPath:   os.Getenv("CLASSIFIER_MODEL_PATH"),
		ClassifierTimeout:     getEnvAsDuration("CLASSIFIER_TIMEOUT", 10*time.Second),

		EnableDB: getEnvAsBool("ENABLE_DB", false),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "epif"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		RedisURL:           os.Getenv("REDIS_URL"),
		PredictionCacheTTL: getEnvAsDuration("PREDICTION_CACHE_TTL", time.Hour),

		JWTSecret: os.Getenv("JWT_SECRET_KEY"),

		RetentionDays:     getEnvAsInt("RETENTION_DAYS", 0),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", "@daily"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "epif.assessments"),
		EventWorkers: getEnvAsInt("EVENT_WORKERS", 2),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ClassifierMode {
	case ClassifierModeHTTP:
		if c.ClassifierURL == "" {
			return fmt.Errorf("CLASSIFIER_URL is required when CLASSIFIER_MODE=http")
		}
	case ClassifierModeGRPC:
		if c.ClassifierGRPCAddress == "" {
			return fmt.Errorf("CLASSIFIER_GRPC_ADDRESS is required when CLASSIFIER_MODE=grpc")
		}
	case ClassifierModeLocal:
		if c.ClassifierModelPath == "" {
			return fmt.Errorf("CLASSIFIER_MODEL_PATH is required when CLASSIFIER_MODE=local")
		}
	default:
		return fmt.Errorf("unsupported CLASSIFIER_MODE %q", c.ClassifierMode)
	}

	if c.ClassifierTimeout <= 0 {
		return fmt.Errorf("CLASSIFIER_TIMEOUT must be positive")
	}
	if c.EnableDB && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required when ENABLE_DB=true")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("RETENTION_DAYS cannot be negative")
	}
	if c.AMQPURL != "" && c.AMQPQueue == "" {
		return fmt.Errorf("AMQP_QUEUE is required when AMQP_URL is set")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
