package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
	"github.com/AlphaCLabs/LeadPipe/internal/store"
)

type mockExtractor struct {
	extraction Extraction
	err        error
	lastQ      *Question
}

func (m *mockExtractor) Extract(_ context.Context, _ string, _ *models.Conversation, lastQuestion *Question) (Extraction, error) {
	m.lastQ = lastQuestion
	return m.extraction, m.err
}

type mockNotifier struct {
	confirmed [][]string
	resets    []string
	err       error
}

func (m *mockNotifier) ContactConfirmed(_ context.Context, _ *models.Conversation, changed []string) error {
	m.confirmed = append(m.confirmed, changed)
	return m.err
}

func (m *mockNotifier) ContactReset(_ context.Context, userID string) error {
	m.resets = append(m.resets, userID)
	return m.err
}

type mockDeliverer struct {
	sent []string
	err  error
}

func (m *mockDeliverer) Deliver(_ context.Context, _, text string) (string, error) {
	m.sent = append(m.sent, text)
	return "msg-1", m.err
}

type failingStore struct {
	*store.InMemoryStore
}

func (f *failingStore) SaveConversation(_ *models.Conversation) error {
	return errors.New("disk full")
}

func TestProcessMessageEmptyIsNoOp(t *testing.T) {
	st := store.NewInMemoryStore()
	eng := New(testCatalog(), st)

	reply, err := eng.ProcessMessage(context.Background(), "user1", "   ")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply != "" {
		t.Errorf("expected no reply for empty message, got %q", reply)
	}
	conv, _ := st.GetConversation("user1")
	if conv != nil {
		t.Error("empty message must not create state")
	}
}

func TestProcessMessageFirstTurnAsksSurname(t *testing.T) {
	st := store.NewInMemoryStore()
	ex := &mockExtractor{extraction: Extraction{Fields: map[string]string{models.FieldName: "Ana"}}}
	eng := New(testCatalog(), st, WithExtractor(ex))

	reply, err := eng.ProcessMessage(context.Background(), "user1", "Hi, I'm Ana")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply != questionSurname {
		t.Errorf("expected surname question, got %q", reply)
	}

	conv, _ := st.GetConversation("user1")
	if conv == nil {
		t.Fatal("expected conversation to be persisted")
	}
	if conv.Name != "Ana" {
		t.Errorf("extraction not merged, name=%q", conv.Name)
	}
	if len(conv.Transcript) != 2 {
		t.Fatalf("expected user+assistant transcript entries, got %d", len(conv.Transcript))
	}
	if conv.Transcript[1].QuestionType != models.QuestionTypeSurname {
		t.Errorf("assistant message should carry the question tag, got %q", conv.Transcript[1].QuestionType)
	}
}

func TestProcessMessagePassesLastQuestionToExtractor(t *testing.T) {
	st := store.NewInMemoryStore()
	ex := &mockExtractor{extraction: Extraction{Fields: map[string]string{models.FieldName: "Ana"}}}
	eng := New(testCatalog(), st, WithExtractor(ex))

	ctx := context.Background()
	if _, err := eng.ProcessMessage(ctx, "user1", "Hi"); err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	ex.extraction = Extraction{Fields: map[string]string{models.FieldSurname: "Gómez"}}
	if _, err := eng.ProcessMessage(ctx, "user1", "Gómez"); err != nil {
		t.Fatalf("second turn failed: %v", err)
	}
	if ex.lastQ == nil {
		t.Fatal("extractor should see the last question")
	}
	if ex.lastQ.Type != models.QuestionTypeSurname {
		t.Errorf("extractor should see the last question tag, got %q", ex.lastQ.Type)
	}
	if ex.lastQ.Text == "" {
		t.Error("extractor should see the last question text")
	}
}

func TestProcessMessageExtractionFailureStillAsks(t *testing.T) {
	st := store.NewInMemoryStore()
	ex := &mockExtractor{err: errors.New("model timeout")}
	eng := New(testCatalog(), st, WithExtractor(ex))

	reply, err := eng.ProcessMessage(context.Background(), "user1", "Hello")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply != questionName {
		t.Errorf("expected the interview to continue with the name question, got %q", reply)
	}
}

func TestProcessMessageAgentModeRecordsWithoutReply(t *testing.T) {
	st := store.NewInMemoryStore()
	conv := models.NewConversation("user1")
	conv.Mode = models.ModeAgent
	if err := st.SaveConversation(conv); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	eng := New(testCatalog(), st)

	reply, err := eng.ProcessMessage(context.Background(), "user1", "Anyone there?")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply != "" {
		t.Errorf("agent mode must not auto-reply, got %q", reply)
	}
	saved, _ := st.GetConversation("user1")
	if len(saved.Transcript) != 1 || saved.Transcript[0].Content != "Anyone there?" {
		t.Errorf("inbound message should still be recorded, got %v", saved.Transcript)
	}
}

func TestProcessMessageDeclinedQuote(t *testing.T) {
	st := store.NewInMemoryStore()
	seed := models.NewConversation("user1")
	seed.Name = "Ana Gómez"
	seed.HelpType = models.HelpTypeProduct
	seed.ProductType = "breaker"
	if err := st.SaveConversation(seed); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	ex := &mockExtractor{extraction: Extraction{Fields: map[string]string{models.FieldQuoteIntent: "no"}}}
	eng := New(testCatalog(), st, WithExtractor(ex))

	reply, err := eng.ProcessMessage(context.Background(), "user1", "No quote, thanks")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply != msgDeclinedQuote {
		t.Errorf("expected declined-quote closing, got %q", reply)
	}
	saved, _ := st.GetConversation("user1")
	if !saved.Completed {
		t.Error("declined quote should close the conversation")
	}
}

func TestProcessMessageCompletionClosing(t *testing.T) {
	st := store.NewInMemoryStore()
	seed := qualifiedLead()
	seed.Email = "" // one slot left
	if err := st.SaveConversation(seed); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	ex := &mockExtractor{extraction: Extraction{Fields: map[string]string{models.FieldEmail: "ana@acme.mx"}}}
	eng := New(testCatalog(), st, WithExtractor(ex))

	reply, err := eng.ProcessMessage(context.Background(), "user1", "ana@acme.mx")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply != msgClosingProduct {
		t.Errorf("expected closing message, got %q", reply)
	}
	saved, _ := st.GetConversation("user1")
	if !saved.Completed {
		t.Error("expected conversation marked complete")
	}
}

func TestProcessMessageNotifierReceivesChanges(t *testing.T) {
	st := store.NewInMemoryStore()
	n := &mockNotifier{}
	ex := &mockExtractor{extraction: Extraction{Fields: map[string]string{models.FieldName: "Ana"}}}
	eng := New(testCatalog(), st, WithExtractor(ex), WithNotifier(n))

	if _, err := eng.ProcessMessage(context.Background(), "user1", "Ana"); err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if len(n.confirmed) != 1 || len(n.confirmed[0]) != 1 || n.confirmed[0][0] != models.FieldName {
		t.Errorf("notifier should see the changed fields, got %v", n.confirmed)
	}
}

func TestProcessMessageNotifierFailureDoesNotAbort(t *testing.T) {
	st := store.NewInMemoryStore()
	n := &mockNotifier{err: errors.New("crm down")}
	ex := &mockExtractor{extraction: Extraction{Fields: map[string]string{models.FieldName: "Ana"}}}
	eng := New(testCatalog(), st, WithExtractor(ex), WithNotifier(n))

	reply, err := eng.ProcessMessage(context.Background(), "user1", "Ana")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply == "" || reply == msgApology {
		t.Errorf("CRM failure must not surface to the lead, got %q", reply)
	}
}

func TestProcessMessageDeliveryFailureDoesNotAbort(t *testing.T) {
	st := store.NewInMemoryStore()
	d := &mockDeliverer{err: errors.New("send failed")}
	eng := New(testCatalog(), st, WithDeliverer(d))

	reply, err := eng.ProcessMessage(context.Background(), "user1", "Hello")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply != questionName {
		t.Errorf("delivery failure must not abort the turn, got %q", reply)
	}
	saved, _ := st.GetConversation("user1")
	if saved == nil {
		t.Error("state should still be persisted after delivery failure")
	}
}

func TestProcessMessagePersistenceFailureYieldsApology(t *testing.T) {
	st := &failingStore{store.NewInMemoryStore()}
	eng := New(testCatalog(), st)

	reply, err := eng.ProcessMessage(context.Background(), "user1", "Hello")
	if err == nil {
		t.Fatal("expected error when persistence fails")
	}
	if reply != msgApology {
		t.Errorf("expected apology on persistence failure, got %q", reply)
	}
}

func TestProcessMessageResetCommand(t *testing.T) {
	st := store.NewInMemoryStore()
	seed := qualifiedLead()
	if err := st.SaveConversation(seed); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	n := &mockNotifier{}
	d := &mockDeliverer{}
	eng := New(testCatalog(), st, WithNotifier(n), WithDeliverer(d))

	reply, err := eng.ProcessMessage(context.Background(), "user1", "RESET")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if reply != msgResetDone {
		t.Errorf("expected reset confirmation, got %q", reply)
	}
	if len(d.sent) != 1 || d.sent[0] != msgResetDone {
		t.Errorf("reset confirmation should be delivered to the lead, deliverer saw %v", d.sent)
	}
	conv, _ := st.GetConversation("user1")
	if conv != nil {
		t.Error("reset must discard the stored state entirely")
	}
	if len(n.resets) != 1 || n.resets[0] != "user1" {
		t.Errorf("notifier should see the reset, got %v", n.resets)
	}
}

func TestProcessMessageStatusCommand(t *testing.T) {
	st := store.NewInMemoryStore()
	seed := models.NewConversation("user1")
	seed.Name = "Ana Gómez"
	if err := st.SaveConversation(seed); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	d := &mockDeliverer{}
	eng := New(testCatalog(), st, WithDeliverer(d))

	reply, err := eng.ProcessMessage(context.Background(), "user1", "status")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}
	if !strings.Contains(reply, "Ana Gómez") || !strings.Contains(reply, "user1") {
		t.Errorf("status dump should describe the state, got %q", reply)
	}
	if len(d.sent) != 1 || d.sent[0] != reply {
		t.Errorf("status dump should be delivered to the lead, deliverer saw %v", d.sent)
	}
	// status must not mutate anything
	conv, _ := st.GetConversation("user1")
	if len(conv.Transcript) != 0 {
		t.Error("status command must not append to the transcript")
	}
}

func TestSetMode(t *testing.T) {
	st := store.NewInMemoryStore()
	eng := New(testCatalog(), st)

	if err := eng.SetMode("user1", models.ModeAgent); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	conv, _ := st.GetConversation("user1")
	if conv == nil || conv.Mode != models.ModeAgent {
		t.Errorf("expected agent mode persisted, got %+v", conv)
	}
	if err := eng.SetMode("user1", "supervisor"); err == nil {
		t.Error("expected invalid mode to be rejected")
	}
}

func TestConversationLookup(t *testing.T) {
	st := store.NewInMemoryStore()
	eng := New(testCatalog(), st)

	if _, err := eng.Conversation("ghost"); !errors.Is(err, models.ErrConversationNotFound) {
		t.Errorf("expected ErrConversationNotFound, got %v", err)
	}
}
