// Package api provides conversation management handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// conversationsHandler handles GET /conversations.
func (s *Server) conversationsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("conversationsHandler invoked", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	conversations, err := s.st.ListConversations()
	if err != nil {
		slog.Error("conversationsHandler failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list conversations"))
		return
	}

	// Transcripts are large and rarely wanted in the listing.
	summaries := make([]*models.Conversation, 0, len(conversations))
	for _, conv := range conversations {
		view := conv.Clone()
		view.Transcript = nil
		summaries = append(summaries, view)
	}

	slog.Debug("conversationsHandler succeeded", "count", len(summaries))
	writeJSONResponse(w, http.StatusOK, models.Success(summaries))
}

// conversationHandler routes /conversations/{userID} and
// /conversations/{userID}/mode.
func (s *Server) conversationHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("conversationHandler invoked", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/conversations/")
	segments := strings.Split(strings.TrimSuffix(path, "/"), "/")

	if len(segments) == 0 || segments[0] == "" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Missing conversation id"))
		return
	}
	userID := segments[0]

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.getConversationHandler(w, r, userID)
		case http.MethodDelete:
			s.resetConversationHandler(w, r, userID)
		default:
			w.Header().Set("Allow", "GET, DELETE")
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	if len(segments) == 2 && segments[1] == "mode" {
		switch r.Method {
		case http.MethodPut:
			s.setConversationModeHandler(w, r, userID)
		default:
			w.Header().Set("Allow", http.MethodPut)
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown conversation endpoint"))
}

// getConversationHandler handles GET /conversations/{userID}.
func (s *Server) getConversationHandler(w http.ResponseWriter, r *http.Request, userID string) {
	conv, err := s.eng.Conversation(userID)
	if err != nil {
		if errors.Is(err, models.ErrConversationNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Conversation not found"))
			return
		}
		slog.Error("getConversationHandler failed", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to get conversation"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(conv))
}

// resetConversationHandler handles DELETE /conversations/{userID}.
func (s *Server) resetConversationHandler(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.eng.Reset(r.Context(), userID); err != nil {
		slog.Error("resetConversationHandler failed", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to reset conversation"))
		return
	}
	slog.Info("Conversation reset via API", "userID", userID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Conversation reset successfully", nil))
}

// setConversationModeHandler handles PUT /conversations/{userID}/mode. It
// switches a lead between bot handling and human agent handling.
func (s *Server) setConversationModeHandler(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req struct {
		Mode models.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("setConversationModeHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if !models.IsValidMode(req.Mode) {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid mode, expected 'bot' or 'agent'"))
		return
	}

	if err := s.eng.SetMode(userID, req.Mode); err != nil {
		slog.Error("setConversationModeHandler failed", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to set conversation mode"))
		return
	}
	slog.Info("Conversation mode changed via API", "userID", userID, "mode", req.Mode)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Conversation mode updated", nil))
}
