package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/Gridfuse/gridfuse/config"
	"github.com/Gridfuse/gridfuse/pkg/sqlexpr"
	"github.com/Gridfuse/gridfuse/pkg/tracing"
)

// GetConnectionPoolSettings returns connection pool settings based on environment
func GetConnectionPoolSettings() (maxOpen, maxIdle int, maxLifetime time.Duration) {
	environment := os.Getenv("ENVIRONMENT")

	// Use smaller pools for test environment to conserve connections
	if environment == "test" || os.Getenv("INTEGRATION_TESTS") == "true" {
		return 10, 5, 2 * time.Minute
	}

	return 25, 25, 20 * time.Minute
}

// GetPostgresDSN returns the DSN of the configured PostgreSQL database
func GetPostgresDSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
	}
	return u.String()
}

// GetSQLiteDSN returns the DSN of the configured SQLite file. Foreign keys
// are on and writers wait instead of failing with SQLITE_BUSY.
func GetSQLiteDSN(cfg *config.DatabaseConfig) string {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// DriverName returns the database/sql driver registered for a config driver
func DriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "postgres", nil
	case "sqlite":
		return "sqlite3", nil
	}
	return "", fmt.Errorf("unsupported database driver: %s", driver)
}

// DialectOf returns the SQL dialect spoken by a config driver
func DialectOf(driver string) (sqlexpr.Dialect, error) {
	return sqlexpr.ParseDialect(driver)
}

// Connect opens and pings the configured database. With traced set, the
// driver is wrapped by ocsql so that queries show up as spans.
func Connect(cfg *config.DatabaseConfig, traced bool) (*sql.DB, error) {
	driverName, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := GetPostgresDSN(cfg)
	if cfg.Driver == "sqlite" {
		dsn = GetSQLiteDSN(cfg)
	}

	if traced {
		driverName, err = tracing.WrapDriver(driverName)
		if err != nil {
			return nil, fmt.Errorf("failed to wrap database driver: %w", err)
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ConfigurePool(db, cfg.Driver)
	return db, nil
}

// ConfigurePool applies pool limits. SQLite gets a single connection so
// that writes are serialized and in-memory databases are not split.
func ConfigurePool(db *sql.DB, driver string) {
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	maxOpen, maxIdle, maxLifetime := GetConnectionPoolSettings()
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(maxLifetime / 2)
}
