package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/course-timetable-api/pkg/config"
)

const idleConnTimeout = 30 * time.Minute

// DSN renders cfg as a lib/pq connection URL with escaped credentials.
func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Name,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}

	q := url.Values{}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", int(cfg.ConnectTimeout.Seconds())))
	}
	if cfg.AppName != "" {
		q.Set("application_name", cfg.AppName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// NewPostgres opens the course catalogue database and verifies it answers
// within the configured connect timeout.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	configurePool(db, cfg)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return db, nil
}

func configurePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(idleConnTimeout)
}
