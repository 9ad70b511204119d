// Package models defines the core data structures for LeadPipe.
//
// It includes the conversation state shared by the dialogue engine, the
// messaging services, and the HTTP API.
package models

import (
	"errors"
)

// Sentinel answer values. A sentinel is distinct from an empty slot: it means
// the lead was asked and declined or did not know, rather than never asked.
const (
	AnswerNotSpecified = "not specified"
	AnswerDoesNotHave  = "does not have"
)

// Reserved inbound commands, recognized before normal turn processing.
const (
	CommandReset  = "reset"
	CommandStatus = "status"
)

// Error variables for better error handling and testability
var (
	ErrEmptyUserID          = errors.New("user id cannot be empty")
	ErrEmptyRecipient       = errors.New("recipient cannot be empty")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUnknownProductType   = errors.New("unknown product type")
	ErrUnknownField         = errors.New("unknown field name")
)

// Mode indicates who is driving replies for a conversation.
type Mode string

const (
	// ModeBot lets the dialogue engine answer automatically.
	ModeBot Mode = "bot"
	// ModeAgent suspends automatic replies; a human agent has taken over.
	// Inbound messages are still recorded and merged.
	ModeAgent Mode = "agent"
)

// IsValidMode checks if the given conversation mode is supported.
func IsValidMode(m Mode) bool {
	return m == ModeBot || m == ModeAgent
}

// Role identifies the author of a transcript entry.
type Role string

const (
	// RoleUser marks a message written by the lead.
	RoleUser Role = "user"
	// RoleAssistant marks a message sent by LeadPipe.
	RoleAssistant Role = "assistant"
)

// QuestionType tags an outbound question with the slot it targets, so the
// engine can recover intent on the next turn without matching prose.
type QuestionType string

const (
	// QuestionTypeName asks for the lead's first name.
	QuestionTypeName QuestionType = "name"
	// QuestionTypeSurname asks for the lead's last name.
	QuestionTypeSurname QuestionType = "surname"
	// QuestionTypeHelpType asks what the lead needs help with.
	QuestionTypeHelpType QuestionType = "help_type"
	// QuestionTypeProductType asks which machinery category the lead wants.
	QuestionTypeProductType QuestionType = "product_type"
	// QuestionTypeProductDetail asks one product-specific technical question.
	QuestionTypeProductDetail QuestionType = "product_detail"
	// QuestionTypeQuoteIntent asks whether the lead wants a formal quote.
	QuestionTypeQuoteIntent QuestionType = "quote_intent"
	// QuestionTypeCompanyInfo asks for the remaining company fields in one prompt.
	QuestionTypeCompanyInfo QuestionType = "company_info"
	// QuestionTypeNone marks transcript entries that are not slot questions
	// (closing messages, apologies, free-form replies).
	QuestionTypeNone QuestionType = ""
)

// HelpType classifies what the lead is after.
type HelpType string

const (
	// HelpTypeProduct means the lead is asking about machinery.
	HelpTypeProduct HelpType = "product"
	// HelpTypeOther means a non-product inquiry; the interview ends after the name.
	HelpTypeOther HelpType = "other"
)

// MessageStatus represents the delivery status of an outbound message.
type MessageStatus string

const (
	// MessageStatusSent indicates the message was sent.
	MessageStatusSent MessageStatus = "sent"
	// MessageStatusDelivered indicates the message was delivered.
	MessageStatusDelivered MessageStatus = "delivered"
	// MessageStatusRead indicates the message was read.
	MessageStatusRead MessageStatus = "read"
	// MessageStatusFailed indicates the message failed to send.
	MessageStatusFailed MessageStatus = "failed"
)

// Receipt reports a delivery status change for an outbound message.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response represents an incoming message from a lead.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// API Response types for consistent JSON responses

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
