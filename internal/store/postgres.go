// Package store provides conversation storage backends for LeadPipe.
//
// This file implements the PostgreSQL-backed conversation store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.PostgresDSN != "")

	dsn := cfg.PostgresDSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// GetConversation retrieves the conversation for a user, or (nil, nil).
func (s *PostgresStore) GetConversation(userID string) (*models.Conversation, error) {
	var stateJSON []byte
	err := s.db.QueryRow(`SELECT state FROM conversations WHERE user_id = $1`, userID).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetConversation not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversation failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query conversation for %s: %w", userID, err)
	}

	var conv models.Conversation
	if err := json.Unmarshal(stateJSON, &conv); err != nil {
		slog.Error("PostgresStore GetConversation unmarshal failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to decode conversation for %s: %w", userID, err)
	}
	if conv.ProductDetails == nil {
		conv.ProductDetails = make(map[string]string)
	}
	slog.Debug("PostgresStore GetConversation found", "userID", userID)
	return &conv, nil
}

// SaveConversation stores or updates the conversation for a user.
func (s *PostgresStore) SaveConversation(conv *models.Conversation) error {
	if conv.UserID == "" {
		return models.ErrEmptyUserID
	}
	stateJSON, err := json.Marshal(conv)
	if err != nil {
		slog.Error("PostgresStore SaveConversation marshal failed", "error", err, "userID", conv.UserID)
		return fmt.Errorf("failed to encode conversation for %s: %w", conv.UserID, err)
	}

	query := `
		INSERT INTO conversations (user_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET state = $2, updated_at = $4`
	if _, err := s.db.Exec(query, conv.UserID, stateJSON, conv.CreatedAt, conv.UpdatedAt); err != nil {
		slog.Error("PostgresStore SaveConversation failed", "error", err, "userID", conv.UserID)
		return fmt.Errorf("failed to save conversation for %s: %w", conv.UserID, err)
	}
	slog.Debug("PostgresStore SaveConversation succeeded", "userID", conv.UserID)
	return nil
}

// DeleteConversation removes the conversation for a user.
func (s *PostgresStore) DeleteConversation(userID string) error {
	if _, err := s.db.Exec(`DELETE FROM conversations WHERE user_id = $1`, userID); err != nil {
		slog.Error("PostgresStore DeleteConversation failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to delete conversation for %s: %w", userID, err)
	}
	slog.Debug("PostgresStore DeleteConversation succeeded", "userID", userID)
	return nil
}

// ListConversations returns all stored conversations ordered by user id.
func (s *PostgresStore) ListConversations() ([]*models.Conversation, error) {
	rows, err := s.db.Query(`SELECT state FROM conversations ORDER BY user_id`)
	if err != nil {
		slog.Error("PostgresStore ListConversations query failed", "error", err)
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var out []*models.Conversation
	for rows.Next() {
		var stateJSON []byte
		if err := rows.Scan(&stateJSON); err != nil {
			slog.Error("PostgresStore ListConversations scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		var conv models.Conversation
		if err := json.Unmarshal(stateJSON, &conv); err != nil {
			slog.Error("PostgresStore ListConversations unmarshal failed", "error", err)
			continue
		}
		if conv.ProductDetails == nil {
			conv.ProductDetails = make(map[string]string)
		}
		out = append(out, &conv)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListConversations rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate conversation rows: %w", err)
	}
	slog.Debug("PostgresStore ListConversations succeeded", "count", len(out))
	return out, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
