// Package store provides conversation storage backends for LeadPipe.
//
// This file implements the SQLite-backed conversation store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store from the configured DSN, which is
// a file path to the database file. A missing directory is created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.SQLiteDSN != "")

	dsn := cfg.SQLiteDSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// GetConversation retrieves the conversation for a user, or (nil, nil).
func (s *SQLiteStore) GetConversation(userID string) (*models.Conversation, error) {
	var stateJSON string
	err := s.db.QueryRow(`SELECT state FROM conversations WHERE user_id = ?`, userID).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetConversation not found", "userID", userID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversation failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query conversation for %s: %w", userID, err)
	}

	var conv models.Conversation
	if err := json.Unmarshal([]byte(stateJSON), &conv); err != nil {
		slog.Error("SQLiteStore GetConversation unmarshal failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to decode conversation for %s: %w", userID, err)
	}
	if conv.ProductDetails == nil {
		conv.ProductDetails = make(map[string]string)
	}
	slog.Debug("SQLiteStore GetConversation found", "userID", userID)
	return &conv, nil
}

// SaveConversation stores or updates the conversation for a user.
func (s *SQLiteStore) SaveConversation(conv *models.Conversation) error {
	if conv.UserID == "" {
		return models.ErrEmptyUserID
	}
	stateJSON, err := json.Marshal(conv)
	if err != nil {
		slog.Error("SQLiteStore SaveConversation marshal failed", "error", err, "userID", conv.UserID)
		return fmt.Errorf("failed to encode conversation for %s: %w", conv.UserID, err)
	}

	query := `
		INSERT OR REPLACE INTO conversations (user_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?)`
	if _, err := s.db.Exec(query, conv.UserID, string(stateJSON), conv.CreatedAt, conv.UpdatedAt); err != nil {
		slog.Error("SQLiteStore SaveConversation failed", "error", err, "userID", conv.UserID)
		return fmt.Errorf("failed to save conversation for %s: %w", conv.UserID, err)
	}
	slog.Debug("SQLiteStore SaveConversation succeeded", "userID", conv.UserID)
	return nil
}

// DeleteConversation removes the conversation for a user.
func (s *SQLiteStore) DeleteConversation(userID string) error {
	if _, err := s.db.Exec(`DELETE FROM conversations WHERE user_id = ?`, userID); err != nil {
		slog.Error("SQLiteStore DeleteConversation failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to delete conversation for %s: %w", userID, err)
	}
	slog.Debug("SQLiteStore DeleteConversation succeeded", "userID", userID)
	return nil
}

// ListConversations returns all stored conversations ordered by user id.
func (s *SQLiteStore) ListConversations() ([]*models.Conversation, error) {
	rows, err := s.db.Query(`SELECT state FROM conversations ORDER BY user_id`)
	if err != nil {
		slog.Error("SQLiteStore ListConversations query failed", "error", err)
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var out []*models.Conversation
	for rows.Next() {
		var stateJSON string
		if err := rows.Scan(&stateJSON); err != nil {
			slog.Error("SQLiteStore ListConversations scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		var conv models.Conversation
		if err := json.Unmarshal([]byte(stateJSON), &conv); err != nil {
			slog.Error("SQLiteStore ListConversations unmarshal failed", "error", err)
			continue
		}
		if conv.ProductDetails == nil {
			conv.ProductDetails = make(map[string]string)
		}
		out = append(out, &conv)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListConversations rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate conversation rows: %w", err)
	}
	slog.Debug("SQLiteStore ListConversations succeeded", "count", len(out))
	return out, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
