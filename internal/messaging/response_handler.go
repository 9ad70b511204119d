package messaging

import (
	"context"
	"fmt"
	"log/slog"
)

// MessageProcessor runs one conversation turn for an inbound message. The
// dialogue engine implements this; the returned reply is already delivered
// through the engine's own deliverer, so the handler only logs it.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, userID, message string) (string, error)
}

// ResponseHandler consumes the transport's response and receipt channels and
// routes every inbound message into the conversation engine.
type ResponseHandler struct {
	processor  MessageProcessor
	msgService Service
}

// NewResponseHandler creates a handler routing responses from the given
// transport into the given processor.
func NewResponseHandler(processor MessageProcessor, msgService Service) *ResponseHandler {
	return &ResponseHandler{processor: processor, msgService: msgService}
}

// Start launches the consumer goroutines. They run until the transport
// channels close or the context is cancelled.
func (rh *ResponseHandler) Start(ctx context.Context) {
	go rh.consumeResponses(ctx)
	go rh.consumeReceipts(ctx)
	slog.Debug("ResponseHandler started")
}

// ProcessResponse runs one inbound message through the engine. The sender id
// is canonicalized first so the same lead always maps to the same state.
func (rh *ResponseHandler) ProcessResponse(ctx context.Context, from, body string) error {
	canonicalFrom, err := rh.msgService.ValidateAndCanonicalizeRecipient(from)
	if err != nil {
		slog.Error("ResponseHandler sender validation failed", "error", err, "from", from)
		return fmt.Errorf("invalid sender: %w", err)
	}

	reply, err := rh.processor.ProcessMessage(ctx, canonicalFrom, body)
	if err != nil {
		slog.Error("ResponseHandler turn failed", "error", err, "from", canonicalFrom)
		return fmt.Errorf("failed to process message: %w", err)
	}
	slog.Debug("ResponseHandler turn complete", "from", canonicalFrom, "reply_length", len(reply))
	return nil
}

func (rh *ResponseHandler) consumeResponses(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case response, ok := <-rh.msgService.Responses():
			if !ok {
				slog.Debug("ResponseHandler responses channel closed")
				return
			}
			if err := rh.ProcessResponse(ctx, response.From, response.Body); err != nil {
				slog.Error("ResponseHandler failed to process response", "error", err, "from", response.From)
			}
		}
	}
}

func (rh *ResponseHandler) consumeReceipts(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case receipt, ok := <-rh.msgService.Receipts():
			if !ok {
				slog.Debug("ResponseHandler receipts channel closed")
				return
			}
			slog.Debug("ResponseHandler receipt", "to", receipt.To, "status", receipt.Status)
		}
	}
}
