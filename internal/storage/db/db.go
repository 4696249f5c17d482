package db

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

type Config struct {
	URL string
}

// NewConnection creates and verifies a new database connection.
func NewConnection(cfg Config) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	slog.Info("connected to database", "url", MaskDatabaseURL(cfg.URL))
	return db, nil
}

// MaskDatabaseURL hides credentials in a database URL for logging.
func MaskDatabaseURL(url string) string {
	if url == "" {
		return ""
	}
	return "postgres://[masked]@[masked]"
}
