package crm

import (
	"context"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// Noop is a notifier that records nothing, used when no CRM is configured.
type Noop struct{}

// ContactConfirmed does nothing.
func (Noop) ContactConfirmed(context.Context, *models.Conversation, []string) error { return nil }

// ContactReset does nothing.
func (Noop) ContactReset(context.Context, string) error { return nil }
