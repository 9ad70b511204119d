package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// metaWebhookPayload is the subset of the Meta WhatsApp Cloud API payload the
// bot consumes. Everything else in the notification is ignored.
type metaWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Messages []metaMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type metaMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
}

// webhookHandler serves the Meta webhook: GET for subscription verification,
// POST for inbound message notifications.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.verifyWebhookHandler(w, r)
	case http.MethodPost:
		s.inboundWebhookHandler(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// verifyWebhookHandler implements the hub.challenge handshake Meta performs
// when the webhook is registered.
func (s *Server) verifyWebhookHandler(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "" || token == "" {
		slog.Warn("Webhook verification missing parameters")
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing hub.mode or hub.verify_token"))
		return
	}
	if mode != "subscribe" || token != s.opts.VerifyToken {
		slog.Warn("Webhook verification token mismatch")
		writeJSONResponse(w, http.StatusForbidden, models.Error("Verification failed"))
		return
	}

	slog.Info("Webhook verified")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// inboundWebhookHandler routes inbound WhatsApp messages into the engine. It
// always acknowledges with 200 once the payload parses, so Meta does not
// retry notifications the bot chose to ignore.
func (s *Server) inboundWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var payload metaWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Warn("Webhook invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	msg, ok := firstMessage(payload)
	if !ok {
		slog.Debug("Webhook notification without messages, ignoring")
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Ignored", nil))
		return
	}

	if msg.Text == nil {
		slog.Debug("Webhook non-text message", "from", msg.From, "type", msg.Type)
		if err := s.msgService.SendMessage(r.Context(), msg.From, "I can only read text messages for now. Could you type your request?"); err != nil {
			slog.Error("Webhook failed to send text-only notice", "error", err, "from", msg.From)
		}
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Non-text message acknowledged", nil))
		return
	}

	if err := s.respHandler.ProcessResponse(r.Context(), msg.From, msg.Text.Body); err != nil {
		slog.Error("Webhook failed to process message", "error", err, "from", msg.From)
		// Still acknowledge: the engine already sent an apology to the lead.
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Processed", nil))
}

func firstMessage(payload metaWebhookPayload) (metaMessage, bool) {
	if payload.Object == "" {
		return metaMessage{}, false
	}
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) > 0 {
				return change.Value.Messages[0], true
			}
		}
	}
	return metaMessage{}, false
}
