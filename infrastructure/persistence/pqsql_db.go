package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"social-scheduler/infrastructure/configuration"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB opens the primary PostgreSQL pool from configuration.
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Psql
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return db, nil
}
