package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// mockService implements Service for handler tests.
type mockService struct {
	mu        sync.Mutex
	sent      []string
	responses chan models.Response
	receipts  chan models.Receipt
}

func newMockService() *mockService {
	return &mockService{
		responses: make(chan models.Response, 10),
		receipts:  make(chan models.Receipt, 10),
	}
}

func (m *mockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

func (m *mockService) SendMessage(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, body)
	return nil
}

func (m *mockService) Start(context.Context) error       { return nil }
func (m *mockService) Stop() error                       { return nil }
func (m *mockService) Receipts() <-chan models.Receipt   { return m.receipts }
func (m *mockService) Responses() <-chan models.Response { return m.responses }

// mockProcessor records processed turns.
type mockProcessor struct {
	mu       sync.Mutex
	users    []string
	messages []string
	err      error
}

func (m *mockProcessor) ProcessMessage(_ context.Context, userID, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, userID)
	m.messages = append(m.messages, message)
	return "ok", m.err
}

func TestProcessResponseCanonicalizesSender(t *testing.T) {
	svc := newMockService()
	proc := &mockProcessor{}
	rh := NewResponseHandler(proc, svc)

	if err := rh.ProcessResponse(context.Background(), "+52 1 555 000 1", "hello"); err != nil {
		t.Fatalf("ProcessResponse failed: %v", err)
	}
	if len(proc.users) != 1 || proc.users[0] != "5215550001" {
		t.Errorf("expected canonicalized sender, got %v", proc.users)
	}
	if proc.messages[0] != "hello" {
		t.Errorf("expected message body forwarded, got %q", proc.messages[0])
	}
}

func TestProcessResponseInvalidSender(t *testing.T) {
	svc := newMockService()
	proc := &mockProcessor{}
	rh := NewResponseHandler(proc, svc)

	if err := rh.ProcessResponse(context.Background(), "not-a-number", "hello"); err == nil {
		t.Error("expected error for sender with no digits")
	}
	if len(proc.users) != 0 {
		t.Errorf("invalid sender should not reach the processor, got %v", proc.users)
	}
}

func TestProcessResponseProcessorError(t *testing.T) {
	svc := newMockService()
	proc := &mockProcessor{err: errors.New("turn failed")}
	rh := NewResponseHandler(proc, svc)

	if err := rh.ProcessResponse(context.Background(), "5215550001", "hello"); err == nil {
		t.Error("expected processor error to surface")
	}
}

func TestStartConsumesResponses(t *testing.T) {
	svc := newMockService()
	proc := &mockProcessor{}
	rh := NewResponseHandler(proc, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rh.Start(ctx)

	svc.responses <- models.Response{From: "5215550001", Body: "I need a welder", Time: time.Now().Unix()}
	svc.receipts <- models.Receipt{To: "5215550001", Status: models.MessageStatusDelivered, Time: time.Now().Unix()}

	deadline := time.After(2 * time.Second)
	for {
		proc.mu.Lock()
		n := len(proc.messages)
		proc.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for response to be consumed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDelivererSendsThroughService(t *testing.T) {
	svc := newMockService()
	d := NewDeliverer(svc)

	id, err := d.Deliver(context.Background(), "5215550001", "hello")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty message id, got %q", id)
	}
	if len(svc.sent) != 1 || svc.sent[0] != "hello" {
		t.Errorf("expected message sent through service, got %v", svc.sent)
	}
}

func TestCanonicalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+52 1 555 000 1", "5215550001", false},
		{"5215550001", "5215550001", false},
		{"", "", true},
		{"abc", "", true},
		{"123", "", true},
	}
	for _, tc := range cases {
		got, err := canonicalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("canonicalizePhone(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("canonicalizePhone(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("canonicalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
