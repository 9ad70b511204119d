// Package recovery validates persisted conversation state during application
// startup so that a restart with a changed product catalog never leaves the
// dialogue engine reading slots it no longer understands.
package recovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/models"
	"github.com/AlphaCLabs/LeadPipe/internal/store"
)

// Sweeper repairs stored conversations against the active catalog.
type Sweeper struct {
	cat *catalog.Catalog
	st  store.ConversationStore
}

// NewSweeper creates a sweeper bound to the catalog the engine will run with.
func NewSweeper(cat *catalog.Catalog, st store.ConversationStore) *Sweeper {
	return &Sweeper{cat: cat, st: st}
}

// Run loads every stored conversation, repairs invalid state in place and
// persists the repaired records. Repairs are logged per conversation so an
// operator can see what a catalog change invalidated.
func (s *Sweeper) Run(ctx context.Context) error {
	convs, err := s.st.ListConversations()
	if err != nil {
		return fmt.Errorf("failed to list conversations for recovery: %w", err)
	}

	repairedCount := 0
	errorCount := 0
	for _, conv := range convs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		repairs := s.repair(conv)
		if len(repairs) == 0 {
			continue
		}
		slog.Info("Recovery repaired conversation", "userID", conv.UserID, "repairs", repairs)
		if err := s.st.SaveConversation(conv); err != nil {
			slog.Error("Recovery failed to persist repaired conversation", "error", err, "userID", conv.UserID)
			errorCount++
			continue
		}
		repairedCount++
	}

	slog.Info("Recovery sweep completed", "conversations", len(convs), "repaired", repairedCount, "errors", errorCount)
	if errorCount > 0 {
		return fmt.Errorf("recovery sweep completed with %d errors out of %d conversations", errorCount, len(convs))
	}
	return nil
}

// repair fixes one conversation and returns a description of each change.
func (s *Sweeper) repair(conv *models.Conversation) []string {
	var repairs []string

	if !models.IsValidMode(conv.Mode) {
		repairs = append(repairs, fmt.Sprintf("reset invalid mode %q", conv.Mode))
		conv.Mode = models.ModeBot
	}

	switch conv.HelpType {
	case models.HelpTypeProduct, models.HelpTypeOther, "":
	default:
		repairs = append(repairs, fmt.Sprintf("cleared invalid help type %q", conv.HelpType))
		conv.HelpType = ""
	}

	if conv.ProductDetails == nil {
		repairs = append(repairs, "initialized product details")
		conv.ProductDetails = make(map[string]string)
	}

	if conv.ProductType != "" && !s.cat.IsKnownType(conv.ProductType) {
		repairs = append(repairs, fmt.Sprintf("cleared unknown product type %q", conv.ProductType))
		conv.ProductType = ""
		if len(conv.ProductDetails) > 0 {
			repairs = append(repairs, "cleared orphaned product details")
			conv.ProductDetails = make(map[string]string)
		}
		conv.Completed = false
		return repairs
	}

	for key := range conv.ProductDetails {
		if _, ok := s.cat.FieldDescriptor(conv.ProductType, key); !ok {
			repairs = append(repairs, fmt.Sprintf("dropped unknown detail field %q", key))
			delete(conv.ProductDetails, key)
			conv.Completed = false
		}
	}

	return repairs
}
