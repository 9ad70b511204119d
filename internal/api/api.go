// Package api provides HTTP handlers and the main API server logic.
//
// It exposes the Meta WhatsApp webhook, the Twilio webhook, and RESTful
// endpoints for inspecting and managing lead conversations.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AlphaCLabs/LeadPipe/internal/engine"
	"github.com/AlphaCLabs/LeadPipe/internal/messaging"
	"github.com/AlphaCLabs/LeadPipe/internal/store"
)

// DefaultAddr is the default listen address for the API server.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	// Addr is the listen address.
	Addr string
	// VerifyToken is the token Meta echoes during webhook verification.
	VerifyToken string
	// TwilioWebhook, when set, is mounted at /twilio/webhook.
	TwilioWebhook http.HandlerFunc
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithVerifyToken sets the Meta webhook verification token.
func WithVerifyToken(token string) Option {
	return func(o *Opts) { o.VerifyToken = token }
}

// WithTwilioWebhook mounts a Twilio inbound webhook handler.
func WithTwilioWebhook(h http.HandlerFunc) Option {
	return func(o *Opts) { o.TwilioWebhook = h }
}

// Server wires the HTTP surface to the conversation engine and transports.
type Server struct {
	opts        Opts
	eng         *engine.Engine
	st          store.ConversationStore
	msgService  messaging.Service
	respHandler *messaging.ResponseHandler
	httpServer  *http.Server
}

// NewServer creates an API server over the given engine, store and transport.
func NewServer(eng *engine.Engine, st store.ConversationStore, msgService messaging.Service, respHandler *messaging.ResponseHandler, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		opts:        cfg,
		eng:         eng,
		st:          st,
		msgService:  msgService,
		respHandler: respHandler,
	}
}

// Handler returns the routed HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.webhookHandler)
	if s.opts.TwilioWebhook != nil {
		mux.HandleFunc("/twilio/webhook", s.opts.TwilioWebhook)
	}
	mux.HandleFunc("/conversations", s.conversationsHandler)
	mux.HandleFunc("/conversations/", s.conversationHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("API server listening", "addr", s.opts.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	slog.Info("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	// Conversation count doubles as a store connectivity probe
	if convs, err := s.st.ListConversations(); err != nil {
		slog.Warn("Health check: failed to list conversations", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "Failed to reach conversation store"
	} else {
		healthData["conversations"] = len(convs)
	}

	statusCode := http.StatusOK
	if healthData["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, healthData)
}
