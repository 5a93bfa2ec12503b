package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Gridfuse/gridfuse/internal/daterange"
	"github.com/Gridfuse/gridfuse/internal/domain"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
)

const VERSION = "0.4"

type Config struct {
	Database    DatabaseConfig
	Compiler    CompilerConfig
	Tracing     TracingConfig
	Environment string
	LogLevel    string
	Version     string
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path of the SQLite database file, or ":memory:"
	Path string
}

// CompilerConfig holds the defaults applied when a query does not say otherwise
type CompilerConfig struct {
	Dialect         sqlexpr.Dialect
	DefaultTimeZone string
	WeekStart       time.Weekday
	FieldCacheTTL   time.Duration
}

type TracingConfig struct {
	Enabled             bool
	ServiceName         string
	SamplingProbability float64

	// Trace exporter configuration
	TraceExporter string // "jaeger", "zipkin", "none"

	JaegerEndpoint string
	ZipkinEndpoint string
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gridfuse")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_PATH", "gridfuse.db")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	v.SetDefault("COMPILER_DIALECT", string(sqlexpr.Postgres))
	v.SetDefault("COMPILER_DEFAULT_TIMEZONE", "UTC")
	v.SetDefault("COMPILER_WEEK_START", "sunday")
	v.SetDefault("COMPILER_FIELD_CACHE_TTL", "5m")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "gridfuse")
	v.SetDefault("TRACING_SAMPLING_PROBABILITY", 0.1)
	v.SetDefault("TRACING_TRACE_EXPORTER", "none")
	v.SetDefault("TRACING_JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	v.SetDefault("TRACING_ZIPKIN_ENDPOINT", "http://localhost:9411/api/v2/spans")

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	dialect, err := sqlexpr.ParseDialect(v.GetString("COMPILER_DIALECT"))
	if err != nil {
		return nil, fmt.Errorf("error parsing COMPILER_DIALECT: %w", err)
	}

	weekStart, err := daterange.ParseWeekday(v.GetString("COMPILER_WEEK_START"))
	if err != nil {
		return nil, fmt.Errorf("error parsing COMPILER_WEEK_START: %w", err)
	}

	defaultTZ := v.GetString("COMPILER_DEFAULT_TIMEZONE")
	if !domain.IsValidTimezone(defaultTZ) {
		return nil, fmt.Errorf("invalid COMPILER_DEFAULT_TIMEZONE: %q", defaultTZ)
	}

	driver := strings.ToLower(v.GetString("DB_DRIVER"))
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s (must be 'postgres' or 'sqlite')", driver)
	}

	config := &Config{
		Database: DatabaseConfig{
			Driver:   driver,
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			Path:     v.GetString("DB_PATH"),
		},
		Compiler: CompilerConfig{
			Dialect:         dialect,
			DefaultTimeZone: defaultTZ,
			WeekStart:       weekStart,
			FieldCacheTTL:   v.GetDuration("COMPILER_FIELD_CACHE_TTL"),
		},
		Tracing: TracingConfig{
			Enabled:             v.GetBool("TRACING_ENABLED"),
			ServiceName:         v.GetString("TRACING_SERVICE_NAME"),
			SamplingProbability: v.GetFloat64("TRACING_SAMPLING_PROBABILITY"),
			TraceExporter:       v.GetString("TRACING_TRACE_EXPORTER"),
			JaegerEndpoint:      v.GetString("TRACING_JAEGER_ENDPOINT"),
			ZipkinEndpoint:      v.GetString("TRACING_ZIPKIN_ENDPOINT"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	return config, nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
