package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the workers need at start. It is loaded once per
// process entry point and passed explicitly into constructors.
type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	OrderService struct {
		BaseURL string
	}
	Maps struct {
		BaseURL string
		APIKey  string // empty key switches the estimator to simulation
	}
	PaymentDelay    time.Duration
	HTTPTimeout     time.Duration
	SupervisorRetry time.Duration
	LogLevel        string
}

// Load reads configuration from the environment, with an optional .env file
// for local runs, applies defaults, and validates required fields.
func Load() (*Config, error) {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config

	cfg.Database.Host = envString("DB_HOST", "localhost")
	cfg.Database.User = envString("DB_USER", "")
	cfg.Database.Password = envString("DB_PASSWORD", "")
	cfg.Database.Name = envString("DB_NAME", "")

	cfg.RabbitMQ.Host = envString("RABBITMQ_HOST", "localhost")
	cfg.RabbitMQ.User = envString("RABBITMQ_USER", "guest")
	cfg.RabbitMQ.Password = envString("RABBITMQ_PASSWORD", "guest")

	cfg.OrderService.BaseURL = envString("ORDER_SERVICE_URL", "http://localhost:8000/api")
	cfg.Maps.BaseURL = envString("MAPS_BASE_URL", "https://maps.googleapis.com/maps/api")
	cfg.Maps.APIKey = envString("MAPS_API_KEY", "")

	cfg.LogLevel = envString("LOG_LEVEL", "info")

	var err error
	if cfg.Database.Port, err = envInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.RabbitMQ.Port, err = envInt("RABBITMQ_PORT", 5672); err != nil {
		return nil, err
	}
	if cfg.PaymentDelay, err = envSeconds("PAYMENT_DELAY_SECONDS", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = envSeconds("HTTP_TIMEOUT_SECONDS", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SupervisorRetry, err = envSeconds("SUPERVISOR_RETRY_SECONDS", 5*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// AMQPURL builds the broker connection URL.
func (c *Config) AMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "DB_PORT must be in 1..65535")
	}
	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "RABBITMQ_PORT must be in 1..65535")
	}
	if c.OrderService.BaseURL == "" {
		problems = append(problems, "ORDER_SERVICE_URL is required")
	} else if !strings.HasPrefix(c.OrderService.BaseURL, "http://") && !strings.HasPrefix(c.OrderService.BaseURL, "https://") {
		problems = append(problems, "ORDER_SERVICE_URL must be an http(s) URL")
	}
	if c.PaymentDelay < 0 {
		problems = append(problems, "PAYMENT_DELAY_SECONDS must be >= 0")
	}
	if c.SupervisorRetry <= 0 {
		problems = append(problems, "SUPERVISOR_RETRY_SECONDS must be > 0")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envSeconds(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer number of seconds: %w", key, err)
	}
	return time.Duration(n) * time.Second, nil
}
