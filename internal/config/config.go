package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port   string
	AppEnv string

	DB    DatabaseConfig
	Redis RedisConfig
	JWT   JWTConfig
	Kafka KafkaConfig

	// PendingTTL is how long a pending booking holds its window before
	// the sweeper expires it.
	PendingTTL time.Duration
	// ExtensionTTL is how long a proposed extension stays open.
	ExtensionTTL time.Duration
	// SweepSchedule is the cron expression driving the expiry sweeper.
	SweepSchedule string
	// AvailabilityCacheTTL bounds staleness of cached availability reads.
	AvailabilityCacheTTL time.Duration

	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// MigrateURL builds the URL form golang-migrate expects.
func (c DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig holds Redis connection settings for the availability cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret string
	Issuer string
}

// KafkaConfig holds broker and consumer group settings.
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// Load reads configuration from the environment, with an optional .env
// file for local development. All variables are prefixed RESERVATION_.
func Load() (*ServiceConfig, error) {
	// Missing .env is fine; containers inject the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RESERVATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8084")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "reservations")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ISSUER", "zemo-rentals")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_ID", "service-reservation")
	v.SetDefault("PENDING_TTL", "30m")
	v.SetDefault("EXTENSION_TTL", "24h")
	v.SetDefault("SWEEP_SCHEDULE", "*/5 * * * *")
	v.SetDefault("AVAILABILITY_CACHE_TTL", "30s")
	v.SetDefault("METRICS_ENABLED", true)

	cfg := &ServiceConfig{
		Port:   v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		PendingTTL:           v.GetDuration("PENDING_TTL"),
		ExtensionTTL:         v.GetDuration("EXTENSION_TTL"),
		SweepSchedule:        v.GetString("SWEEP_SCHEDULE"),
		AvailabilityCacheTTL: v.GetDuration("AVAILABILITY_CACHE_TTL"),
		MetricsEnabled:       v.GetBool("METRICS_ENABLED"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *ServiceConfig) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("RESERVATION_JWT_SECRET is required")
	}
	if len(c.Kafka.Brokers) == 0 || c.Kafka.Brokers[0] == "" {
		return fmt.Errorf("RESERVATION_KAFKA_BROKERS is required")
	}
	if c.PendingTTL <= 0 {
		return fmt.Errorf("RESERVATION_PENDING_TTL must be positive")
	}
	if c.ExtensionTTL <= 0 {
		return fmt.Errorf("RESERVATION_EXTENSION_TTL must be positive")
	}
	return nil
}
