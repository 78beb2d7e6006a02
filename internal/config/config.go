package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-analytics/internal/usecase/performance"
	"github.com/simaogato/wealthflow-analytics/internal/usecase/returns"
)

const defaultAPIToken = "dev-token"

// Config holds all configuration for the analytics service
type Config struct {
	// Server
	GRPCPort string
	APIToken string
	Env      string // development, staging, production

	Database DatabaseConfig

	// Logging
	LogLevel  string
	LogFormat string // json, console

	Analytics AnalyticsConfig
	Scheduler SchedulerConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	ConnStr  string // DB_CONN_STR wins over the individual fields

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// AnalyticsConfig holds the calculation parameters of the engine
type AnalyticsConfig struct {
	DefaultRiskFreeRate      decimal.Decimal
	MarketReturn             float64
	TradingDaysPerYear       int
	IRRMaxIterations         int
	IRRTolerance             float64
	SignificantCashFlowRatio decimal.Decimal
	BatchWorkers             int
}

// SchedulerConfig holds the periodic recalculation settings
type SchedulerConfig struct {
	Enabled       bool
	DailyCron     string // six-field cron expressions, seconds first
	MonthlyCron   string
	QuarterlyCron string
	YearlyCron    string
	JobTimeout    time.Duration
}

// Load reads configuration from a .env file (if present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GRPCPort: getEnv("GRPC_PORT", ":8080"),
		APIToken: getEnv("API_TOKEN", defaultAPIToken),
		Env:      getEnv("ENV", "development"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "wealthflow"),
			ConnStr:         getEnv("DB_CONN_STR", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "1h"),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Analytics: AnalyticsConfig{
			DefaultRiskFreeRate:      getEnvAsDecimal("DEFAULT_RISK_FREE_RATE", "0.02"),
			MarketReturn:             getEnvAsFloat("MARKET_RETURN", 0.08),
			TradingDaysPerYear:       getEnvAsInt("TRADING_DAYS_PER_YEAR", 252),
			IRRMaxIterations:         getEnvAsInt("IRR_MAX_ITERATIONS", 100),
			IRRTolerance:             getEnvAsFloat("IRR_TOLERANCE", 1e-6),
			SignificantCashFlowRatio: getEnvAsDecimal("SIGNIFICANT_CASH_FLOW_RATIO", "0.10"),
			BatchWorkers:             getEnvAsInt("BATCH_WORKERS", 4),
		},

		Scheduler: SchedulerConfig{
			Enabled:       getEnvAsBool("SCHEDULER_ENABLED", false),
			DailyCron:     getEnv("RECALC_DAILY_CRON", "0 30 1 * * *"),
			MonthlyCron:   getEnv("RECALC_MONTHLY_CRON", "0 0 2 1 * *"),
			QuarterlyCron: getEnv("RECALC_QUARTERLY_CRON", "0 30 2 1 1,4,7,10 *"),
			YearlyCron:    getEnv("RECALC_YEARLY_CRON", "0 0 3 1 1 *"),
			JobTimeout:    getEnvAsDuration("RECALC_JOB_TIMEOUT", "30m"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are usable
func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("ENV must be one of: development, staging, production")
	}
	if c.Env == "production" && (c.APIToken == "" || c.APIToken == defaultAPIToken) {
		return errors.New("API_TOKEN must be set in production")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return errors.New("LOG_FORMAT must be json or console")
	}

	a := c.Analytics
	if a.TradingDaysPerYear <= 0 || a.TradingDaysPerYear > 366 {
		return errors.New("TRADING_DAYS_PER_YEAR must be between 1 and 366")
	}
	if a.IRRMaxIterations <= 0 {
		return errors.New("IRR_MAX_ITERATIONS must be positive")
	}
	if a.IRRTolerance <= 0 {
		return errors.New("IRR_TOLERANCE must be positive")
	}
	if a.DefaultRiskFreeRate.LessThanOrEqual(decimal.NewFromInt(-1)) || a.DefaultRiskFreeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.New("DEFAULT_RISK_FREE_RATE must be a fraction between -1 and 1")
	}
	if a.SignificantCashFlowRatio.IsNegative() {
		return errors.New("SIGNIFICANT_CASH_FLOW_RATIO cannot be negative")
	}
	if a.BatchWorkers <= 0 {
		return errors.New("BATCH_WORKERS must be positive")
	}
	if c.Scheduler.Enabled && c.Scheduler.JobTimeout <= 0 {
		return errors.New("RECALC_JOB_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	if d.ConnStr != "" {
		return d.ConnStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Engine converts the analytics settings into the engine's immutable configuration
func (a AnalyticsConfig) Engine() performance.Config {
	ret := returns.DefaultConfig()
	ret.MaxIterations = a.IRRMaxIterations
	ret.Tolerance = a.IRRTolerance

	return performance.Config{
		RiskFreeRate:             a.DefaultRiskFreeRate,
		MarketReturn:             a.MarketReturn,
		TradingDaysPerYear:       a.TradingDaysPerYear,
		Returns:                  ret,
		SignificantCashFlowRatio: a.SignificantCashFlowRatio,
		BatchWorkers:             a.BatchWorkers,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	value, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.RequireFromString(defaultValue)
	}
	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	duration, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
