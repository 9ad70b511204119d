package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

type recordedRequest struct {
	method string
	path   string
	props  map[string]string
}

// fakeHubSpot serves the three contact endpoints the notifier uses.
func fakeHubSpot(t *testing.T, requests *[]recordedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		rec := recordedRequest{method: r.Method, path: r.URL.Path}
		if r.Method == http.MethodPost || r.Method == http.MethodPatch {
			var body struct {
				Properties map[string]string `json:"properties"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			rec.props = body.Properties
		}
		*requests = append(*requests, rec)

		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "contact-1"})
		case http.MethodPatch:
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
}

func testNotifier(t *testing.T, requests *[]recordedRequest) *HubSpot {
	t.Helper()
	srv := fakeHubSpot(t, requests)
	t.Cleanup(srv.Close)
	h, err := NewHubSpot("test-token", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewHubSpot failed: %v", err)
	}
	return h
}

func TestContactConfirmedCreatesThenPatches(t *testing.T) {
	var requests []recordedRequest
	h := testNotifier(t, &requests)

	conv := models.NewConversation("5215550001")
	conv.Name = "Ana"
	conv.Surname = "Gómez"
	conv.ProductType = "welder"
	if err := h.ContactConfirmed(context.Background(), conv, []string{models.FieldName, models.FieldSurname, models.FieldProductType}); err != nil {
		t.Fatalf("ContactConfirmed failed: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected create then patch, got %d requests", len(requests))
	}
	create := requests[0]
	if create.method != http.MethodPost {
		t.Errorf("expected POST first, got %s", create.method)
	}
	if create.props["bot_conversation_id"] != "conv_5215550001" {
		t.Errorf("unexpected conversation id %q", create.props["bot_conversation_id"])
	}
	if create.props["lifecyclestage"] != "lead" {
		t.Errorf("expected lead lifecycle stage, got %q", create.props["lifecyclestage"])
	}

	patch := requests[1]
	if patch.method != http.MethodPatch || !strings.HasSuffix(patch.path, "/contact-1") {
		t.Errorf("expected PATCH on contact-1, got %s %s", patch.method, patch.path)
	}
	if patch.props["firstname"] != "Ana Gómez" {
		t.Errorf("expected combined full name, got %q", patch.props["firstname"])
	}
	if patch.props["product_of_interest"] != "Shindaiwa welders" {
		t.Errorf("unexpected product interest %q", patch.props["product_of_interest"])
	}
}

func TestContactConfirmedReusesContact(t *testing.T) {
	var requests []recordedRequest
	h := testNotifier(t, &requests)

	conv := models.NewConversation("user1")
	conv.Email = "ana@example.com"
	if err := h.ContactConfirmed(context.Background(), conv, []string{models.FieldEmail}); err != nil {
		t.Fatalf("first ContactConfirmed failed: %v", err)
	}
	conv.Phone = "5215550001"
	if err := h.ContactConfirmed(context.Background(), conv, []string{models.FieldPhone}); err != nil {
		t.Fatalf("second ContactConfirmed failed: %v", err)
	}

	creates := 0
	for _, r := range requests {
		if r.method == http.MethodPost {
			creates++
		}
	}
	if creates != 1 {
		t.Errorf("expected one contact creation, got %d", creates)
	}
}

func TestContactConfirmedSendsProductDetailsAsJSON(t *testing.T) {
	var requests []recordedRequest
	h := testNotifier(t, &requests)

	conv := models.NewConversation("user1")
	conv.ProductType = "welder"
	conv.ProductDetails["amperage"] = "300"
	if err := h.ContactConfirmed(context.Background(), conv, []string{models.FieldProductDetails}); err != nil {
		t.Fatalf("ContactConfirmed failed: %v", err)
	}

	patch := requests[len(requests)-1]
	var details map[string]string
	if err := json.Unmarshal([]byte(patch.props["machinery_requirements"]), &details); err != nil {
		t.Fatalf("details property is not JSON: %v", err)
	}
	if details["amperage"] != "300" {
		t.Errorf("expected amperage 300, got %q", details["amperage"])
	}
}

func TestBusinessLineFallsBackToFirstOption(t *testing.T) {
	var requests []recordedRequest
	h := testNotifier(t, &requests)

	conv := models.NewConversation("user1")
	conv.LineOfBusiness = "underwater basket weaving"
	if err := h.ContactConfirmed(context.Background(), conv, []string{models.FieldLineOfBusiness}); err != nil {
		t.Fatalf("ContactConfirmed failed: %v", err)
	}
	patch := requests[len(requests)-1]
	if patch.props["line_of_business"] != DefaultBusinessLines[0] {
		t.Errorf("expected fallback option, got %q", patch.props["line_of_business"])
	}
}

func TestContactResetDeletesContact(t *testing.T) {
	var requests []recordedRequest
	h := testNotifier(t, &requests)

	conv := models.NewConversation("user1")
	conv.Email = "ana@example.com"
	if err := h.ContactConfirmed(context.Background(), conv, []string{models.FieldEmail}); err != nil {
		t.Fatalf("ContactConfirmed failed: %v", err)
	}
	if err := h.ContactReset(context.Background(), "user1"); err != nil {
		t.Fatalf("ContactReset failed: %v", err)
	}

	last := requests[len(requests)-1]
	if last.method != http.MethodDelete || !strings.HasSuffix(last.path, "/contact-1") {
		t.Errorf("expected DELETE on contact-1, got %s %s", last.method, last.path)
	}
}

func TestContactResetUnknownUserIsNoOp(t *testing.T) {
	var requests []recordedRequest
	h := testNotifier(t, &requests)

	if err := h.ContactReset(context.Background(), "never-seen"); err != nil {
		t.Fatalf("ContactReset failed: %v", err)
	}
	if len(requests) != 0 {
		t.Errorf("expected no requests for unknown user, got %d", len(requests))
	}
}

func TestNewHubSpotRequiresToken(t *testing.T) {
	if _, err := NewHubSpot(""); err == nil {
		t.Error("expected error for missing access token")
	}
}
