package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	Mongo    MongoConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// MongoConfig holds the employee document store connection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// AppConfig holds application configuration
type AppConfig struct {
	Env      string
	LogLevel string
}

type PayrollConfig struct {
	Store            string
	EmployeeStore    string
	TablesFile       string
	BatchConcurrency int
	PayslipDir       string
}

// Load reads the configuration from the environment and an optional .env
// file. Overrides run before validation, so command-line flags can replace
// environment values.
func Load(overrides ...func(*Config)) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	config.Mongo = MongoConfig{
		URI:        getEnv("MONGO_URI", ""),
		Database:   getEnv("MONGO_DATABASE", "hris"),
		Collection: getEnv("MONGO_EMPLOYEE_COLLECTION", "employees"),
	}

	config.App = AppConfig{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	concurrency, err := strconv.Atoi(getEnv("PAYROLL_BATCH_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_BATCH_CONCURRENCY: %w", err)
	}

	config.Payroll = PayrollConfig{
		Store:            strings.ToLower(getEnv("PAYROLL_STORE", StorePostgres)),
		EmployeeStore:    strings.ToLower(getEnv("EMPLOYEE_STORE", StorePostgres)),
		TablesFile:       getEnv("PAYROLL_TABLES_FILE", ""),
		BatchConcurrency: concurrency,
		PayslipDir:       getEnv("PAYSLIP_DIR", "payslips"),
	}

	for _, override := range overrides {
		override(config)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Payroll.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("PAYROLL_STORE must be %s or %s", StorePostgres, StoreMemory)
	}
	switch c.Payroll.EmployeeStore {
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("EMPLOYEE_STORE must be %s, %s or %s", StorePostgres, StoreMongo, StoreMemory)
	}

	if c.UsesPostgres() && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Payroll.EmployeeStore == StoreMongo && c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Payroll.BatchConcurrency < 1 {
		return fmt.Errorf("PAYROLL_BATCH_CONCURRENCY must be at least 1")
	}
	return nil
}

// UsesPostgres reports whether any store is backed by PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Payroll.Store == StorePostgres || c.Payroll.EmployeeStore == StorePostgres
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
