// Package store provides conversation storage backends for LeadPipe.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL stores for persistent deployments.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// ConversationStore persists conversation state keyed by user id. Get returns
// (nil, nil) when no conversation exists for the user.
type ConversationStore interface {
	GetConversation(userID string) (*models.Conversation, error)
	SaveConversation(conv *models.Conversation) error
	DeleteConversation(userID string) error
	ListConversations() ([]*models.Conversation, error)
	Close() error
}

// Opts holds configuration options for store construction.
type Opts struct {
	PostgresDSN string
	SQLiteDSN   string
}

// Option defines a configuration option for a store.
type Option func(*Opts)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.PostgresDSN = dsn }
}

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.SQLiteDSN = dsn }
}

// DetectDSNType classifies a DSN string as "postgres" or "sqlite".
// PostgreSQL DSNs use URL schemes or key=value form; everything else is
// treated as an SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite"
}

// NewStore constructs a store from options: PostgreSQL when a Postgres DSN is
// set, SQLite when a file path is set, otherwise in-memory.
func NewStore(opts ...Option) (ConversationStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.PostgresDSN != "":
		return NewPostgresStore(opts...)
	case cfg.SQLiteDSN != "":
		return NewSQLiteStore(opts...)
	default:
		return NewInMemoryStore(), nil
	}
}

// InMemoryStore keeps conversations in a map. Used in tests and when no DSN
// is configured.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*models.Conversation)}
}

// GetConversation returns a copy of the stored conversation, or (nil, nil).
func (s *InMemoryStore) GetConversation(userID string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[userID]
	if !ok {
		return nil, nil
	}
	return conv.Clone(), nil
}

// SaveConversation stores a copy of the conversation.
func (s *InMemoryStore) SaveConversation(conv *models.Conversation) error {
	if conv.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conv.UserID] = conv.Clone()
	return nil
}

// DeleteConversation removes a conversation. Deleting an absent user is a no-op.
func (s *InMemoryStore) DeleteConversation(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, userID)
	return nil
}

// ListConversations returns copies of all stored conversations, ordered by user id.
func (s *InMemoryStore) ListConversations() ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
