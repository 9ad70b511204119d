package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/models"
	"github.com/AlphaCLabs/LeadPipe/internal/store"
)

// Fixed reply texts. The conversational wording around a question comes from
// the Replier when one is configured; these are the engine's own messages.
const (
	msgClosingProduct = "Thanks for the information. One of our specialist advisors will contact you shortly."
	msgClosingOther   = "Sure, I'll share that information with you shortly."
	msgDeclinedQuote  = "Okay, is there anything else I can help you with?"
	msgApology        = "Sorry, we ran into a technical issue. Could you try again?"
	msgResetDone      = "Your conversation has been reset. How can we help you?"
)

// Extractor produces a field mapping from one inbound message. Failures are
// treated by the engine as an empty extraction; the interview never stalls on
// an extraction error.
type Extractor interface {
	Extract(ctx context.Context, message string, conv *models.Conversation, lastQuestion *Question) (Extraction, error)
}

// Replier turns a next-question directive into a conversational reply. When
// absent or failing, the engine falls back to the question text as written.
type Replier interface {
	GenerateReply(ctx context.Context, req ReplyRequest) (string, error)
}

// ReplyRequest carries the context the Replier needs for one turn.
type ReplyRequest struct {
	UserMessage   string
	Conversation  *models.Conversation
	Extracted     Extraction
	NextQuestion  *Question
	InventoryNote string
}

// InventoryAdvisor detects stock questions and describes matching inventory.
// Both methods are best-effort; errors degrade to "no inventory context".
type InventoryAdvisor interface {
	IsInventoryQuestion(ctx context.Context, message string) (bool, error)
	Describe(ctx context.Context, productType string, details map[string]string) (string, error)
}

// Notifier is told which fields a merge confirmed, so a CRM record can be
// kept in sync. Fire-and-forget: failures are logged and never abort a turn.
type Notifier interface {
	ContactConfirmed(ctx context.Context, conv *models.Conversation, changed []string) error
	ContactReset(ctx context.Context, userID string) error
}

// Deliverer sends the computed reply to the lead and returns a transport
// message id. Fire-and-forget from the engine's perspective.
type Deliverer interface {
	Deliver(ctx context.Context, userID, text string) (string, error)
}

// Engine runs one interview turn at a time per user. Turns for the same user
// are serialized; turns for different users run concurrently.
type Engine struct {
	cat   *catalog.Catalog
	store store.ConversationStore

	extractor Extractor
	replier   Replier
	inventory InventoryAdvisor
	notifier  Notifier
	deliverer Deliverer

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtractor sets the field extractor.
func WithExtractor(e Extractor) Option {
	return func(eng *Engine) { eng.extractor = e }
}

// WithReplier sets the conversational reply generator.
func WithReplier(r Replier) Option {
	return func(eng *Engine) { eng.replier = r }
}

// WithInventoryAdvisor sets the inventory question advisor.
func WithInventoryAdvisor(i InventoryAdvisor) Option {
	return func(eng *Engine) { eng.inventory = i }
}

// WithNotifier sets the CRM notifier.
func WithNotifier(n Notifier) Option {
	return func(eng *Engine) { eng.notifier = n }
}

// WithDeliverer sets the outbound message hook.
func WithDeliverer(d Deliverer) Option {
	return func(eng *Engine) { eng.deliverer = d }
}

// New creates an engine over a catalog and a conversation store. All other
// collaborators are optional.
func New(cat *catalog.Catalog, st store.ConversationStore, opts ...Option) *Engine {
	eng := &Engine{
		cat:   cat,
		store: st,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// userLock returns the mutex serializing turns for one user. The map-level
// lock is only held for the lookup, never across a turn.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[userID] = mu
	}
	return mu
}

// ProcessMessage runs one turn for an inbound message and returns the reply
// text, or "" when no reply is warranted (empty message, agent mode).
//
// An empty or whitespace-only message is a no-op. The reserved commands
// "reset" and "status" bypass extraction and selection entirely. Any
// persistence failure leaves the previously saved state untouched and yields
// a generic apology.
func (e *Engine) ProcessMessage(ctx context.Context, userID, message string) (string, error) {
	if userID == "" {
		return "", models.ErrEmptyUserID
	}
	message = strings.TrimSpace(message)
	if message == "" {
		slog.Debug("Engine ignoring empty message", "userID", userID)
		return "", nil
	}

	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(message) {
	case models.CommandReset:
		if err := e.reset(ctx, userID); err != nil {
			slog.Error("Engine reset failed", "error", err, "userID", userID)
			e.deliver(ctx, userID, msgApology)
			return msgApology, err
		}
		// Nothing is persisted here: the next inbound message starts from a
		// freshly created empty state.
		e.deliver(ctx, userID, msgResetDone)
		return msgResetDone, nil
	case models.CommandStatus:
		// On failure status already yields the apology text, so the lead
		// sees whichever of the two the caller gets back.
		dump, err := e.status(userID)
		e.deliver(ctx, userID, dump)
		return dump, err
	}

	conv, err := e.loadOrCreate(userID)
	if err != nil {
		slog.Error("Engine failed to load conversation", "error", err, "userID", userID)
		e.deliver(ctx, userID, msgApology)
		return msgApology, err
	}

	// Work on a clone so a failed turn never persists a half-applied state.
	turn := conv.Clone()
	turn.AppendMessage(models.RoleUser, message, models.QuestionTypeNone)

	extracted := e.extract(ctx, message, turn)
	changed := Merge(e.cat, turn, extracted)
	slog.Debug("Engine merged extraction", "userID", userID, "changed", changed)

	if e.notifier != nil && len(changed) > 0 {
		if err := e.notifier.ContactConfirmed(ctx, turn, changed); err != nil {
			slog.Error("Engine CRM notification failed", "error", err, "userID", userID)
		}
	}

	if turn.Mode == models.ModeAgent {
		slog.Debug("Engine in agent mode, recording without reply", "userID", userID)
		if err := e.store.SaveConversation(turn); err != nil {
			slog.Error("Engine failed to save conversation", "error", err, "userID", userID)
			return msgApology, err
		}
		return "", nil
	}

	if IsComplete(e.cat, turn) {
		turn.Completed = true
		slog.Info("Engine conversation complete", "userID", userID, "helpType", turn.HelpType, "productType", turn.ProductType)
		return e.sendAndRecord(ctx, turn, e.closingMessage(turn), nil)
	}

	q := Select(e.cat, turn)
	if q == nil {
		// Early termination: non-product inquiry or declined quote.
		turn.Completed = true
		if models.IsNegative(turn.QuoteIntent) {
			slog.Info("Engine lead declined quote", "userID", userID)
			return e.sendAndRecord(ctx, turn, msgDeclinedQuote, nil)
		}
		return e.sendAndRecord(ctx, turn, e.closingMessage(turn), nil)
	}

	reply := e.composeReply(ctx, message, turn, extracted, q)
	return e.sendAndRecord(ctx, turn, reply, q)
}

// Reset discards a user's conversation state.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()
	return e.reset(ctx, userID)
}

// Conversation returns a read-only copy of a user's state, or
// models.ErrConversationNotFound.
func (e *Engine) Conversation(userID string) (*models.Conversation, error) {
	conv, err := e.store.GetConversation(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation for %s: %w", userID, err)
	}
	if conv == nil {
		return nil, models.ErrConversationNotFound
	}
	return conv, nil
}

// SetMode switches a conversation between bot and agent handling.
func (e *Engine) SetMode(userID string, mode models.Mode) error {
	if !models.IsValidMode(mode) {
		return fmt.Errorf("invalid conversation mode %q", mode)
	}
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	conv, err := e.loadOrCreate(userID)
	if err != nil {
		return err
	}
	conv.Mode = mode
	slog.Info("Engine conversation mode changed", "userID", userID, "mode", mode)
	return e.store.SaveConversation(conv)
}

func (e *Engine) reset(ctx context.Context, userID string) error {
	if err := e.store.DeleteConversation(userID); err != nil {
		return fmt.Errorf("failed to reset conversation for %s: %w", userID, err)
	}
	if e.notifier != nil {
		if err := e.notifier.ContactReset(ctx, userID); err != nil {
			slog.Error("Engine CRM reset notification failed", "error", err, "userID", userID)
		}
	}
	slog.Info("Engine conversation reset", "userID", userID)
	return nil
}

func (e *Engine) status(userID string) (string, error) {
	conv, err := e.store.GetConversation(userID)
	if err != nil {
		slog.Error("Engine status lookup failed", "error", err, "userID", userID)
		return msgApology, err
	}
	if conv == nil {
		conv = models.NewConversation(userID)
	}
	view := conv.Clone()
	view.Transcript = nil
	dump, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return msgApology, fmt.Errorf("failed to encode status for %s: %w", userID, err)
	}
	return string(dump), nil
}

func (e *Engine) loadOrCreate(userID string) (*models.Conversation, error) {
	conv, err := e.store.GetConversation(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation for %s: %w", userID, err)
	}
	if conv == nil {
		slog.Info("Engine creating conversation", "userID", userID)
		conv = models.NewConversation(userID)
	}
	return conv, nil
}

func (e *Engine) extract(ctx context.Context, message string, conv *models.Conversation) Extraction {
	if e.extractor == nil {
		return Extraction{}
	}
	extracted, err := e.extractor.Extract(ctx, message, conv, lastAskedQuestion(conv))
	if err != nil {
		// Degrade to an empty mapping so the interview is not stalled.
		slog.Error("Engine extraction failed, continuing with empty mapping", "error", err, "userID", conv.UserID)
		return Extraction{}
	}
	return extracted
}

func (e *Engine) composeReply(ctx context.Context, message string, conv *models.Conversation, extracted Extraction, q *Question) string {
	inventoryNote := e.inventoryNote(ctx, message, conv)
	if e.replier == nil {
		if inventoryNote != "" {
			return inventoryNote + "\n\n" + q.Text
		}
		return q.Text
	}
	reply, err := e.replier.GenerateReply(ctx, ReplyRequest{
		UserMessage:   message,
		Conversation:  conv,
		Extracted:     extracted,
		NextQuestion:  q,
		InventoryNote: inventoryNote,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		slog.Error("Engine reply generation failed, using question text", "error", err, "userID", conv.UserID)
		return q.Text
	}
	return reply
}

func (e *Engine) inventoryNote(ctx context.Context, message string, conv *models.Conversation) string {
	if e.inventory == nil {
		return ""
	}
	isInventory, err := e.inventory.IsInventoryQuestion(ctx, message)
	if err != nil {
		slog.Error("Engine inventory detection failed", "error", err, "userID", conv.UserID)
		return ""
	}
	if !isInventory {
		return ""
	}
	note, err := e.inventory.Describe(ctx, conv.ProductType, conv.ProductDetails)
	if err != nil {
		slog.Error("Engine inventory lookup failed", "error", err, "userID", conv.UserID)
		return ""
	}
	return note
}

// sendAndRecord appends the assistant reply to the transcript, delivers it
// when a deliverer is configured, and persists the turn. Delivery failures
// are logged and do not abort the turn; persistence failures do.
func (e *Engine) sendAndRecord(ctx context.Context, conv *models.Conversation, reply string, q *Question) (string, error) {
	if q != nil {
		conv.AppendQuestion(reply, q.Type, q.Field)
	} else {
		conv.AppendMessage(models.RoleAssistant, reply, models.QuestionTypeNone)
	}
	e.deliver(ctx, conv.UserID, reply)
	if err := e.store.SaveConversation(conv); err != nil {
		slog.Error("Engine failed to save conversation", "error", err, "userID", conv.UserID)
		return msgApology, err
	}
	return reply, nil
}

// deliver sends text to the lead when a deliverer is configured. Failures
// are logged and do not change the turn's outcome.
func (e *Engine) deliver(ctx context.Context, userID, text string) {
	if e.deliverer == nil {
		return
	}
	msgID, err := e.deliverer.Deliver(ctx, userID, text)
	if err != nil {
		slog.Error("Engine delivery failed", "error", err, "userID", userID)
		return
	}
	slog.Debug("Engine delivered reply", "userID", userID, "messageID", msgID)
}

func (e *Engine) closingMessage(conv *models.Conversation) string {
	if conv.HelpType == models.HelpTypeOther {
		return msgClosingOther
	}
	return msgClosingProduct
}

// lastAskedQuestion reconstructs the most recent outbound question from the
// transcript, or nil when nothing has been asked yet.
func lastAskedQuestion(conv *models.Conversation) *Question {
	msg, ok := conv.LastAssistantMessage()
	if !ok {
		return nil
	}
	return &Question{Text: msg.Content, Type: msg.QuestionType, Field: msg.QuestionField}
}
