package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Canonical field names used in extracted-field mappings and in the CRM
// property mapping. The extractor returns values keyed by these names.
const (
	FieldName           = "name"
	FieldSurname        = "surname"
	FieldHelpType       = "help_type"
	FieldProductType    = "product_type"
	FieldQuoteIntent    = "quote_intent"
	FieldCompanyName    = "company_name"
	FieldLineOfBusiness = "line_of_business"
	FieldLocation       = "location"
	FieldUsageOrResale  = "usage_or_resale"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldWebsite        = "website"
	FieldProductDetails = "product_details"
)

// GenericFields lists every flat conversation field, in a stable order.
var GenericFields = []string{
	FieldName,
	FieldSurname,
	FieldHelpType,
	FieldProductType,
	FieldQuoteIntent,
	FieldCompanyName,
	FieldLineOfBusiness,
	FieldLocation,
	FieldUsageOrResale,
	FieldEmail,
	FieldPhone,
	FieldWebsite,
}

// Message is one transcript entry. QuestionField names the targeted detail
// field when QuestionType is QuestionTypeProductDetail, so later turns can
// attribute a bare or negative answer without matching question prose.
type Message struct {
	ID            string       `json:"id"`
	Role          Role         `json:"role"`
	Content       string       `json:"content"`
	QuestionType  QuestionType `json:"question_type,omitempty"`
	QuestionField string       `json:"question_field,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Conversation is the mutable record for one lead, keyed by user id.
// Flat generic slots, a nested product-details mapping whose keys are
// restricted to the active product type's field list, and an append-only
// transcript.
type Conversation struct {
	UserID         string            `json:"user_id"`
	Name           string            `json:"name,omitempty"`
	Surname        string            `json:"surname,omitempty"`
	HelpType       HelpType          `json:"help_type,omitempty"`
	ProductType    string            `json:"product_type,omitempty"`
	QuoteIntent    string            `json:"quote_intent,omitempty"`
	CompanyName    string            `json:"company_name,omitempty"`
	LineOfBusiness string            `json:"line_of_business,omitempty"`
	Location       string            `json:"location,omitempty"`
	UsageOrResale  string            `json:"usage_or_resale,omitempty"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Website        string            `json:"website,omitempty"`
	ProductDetails map[string]string `json:"product_details"`
	Transcript     []Message         `json:"transcript"`
	Completed      bool              `json:"completed"`
	Mode           Mode              `json:"mode"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewConversation returns the empty state created on a user's first message.
func NewConversation(userID string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		UserID:         userID,
		ProductDetails: make(map[string]string),
		Transcript:     []Message{},
		Mode:           ModeBot,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Field returns the value of a flat generic field by canonical name.
func (c *Conversation) Field(name string) (string, error) {
	switch name {
	case FieldName:
		return c.Name, nil
	case FieldSurname:
		return c.Surname, nil
	case FieldHelpType:
		return string(c.HelpType), nil
	case FieldProductType:
		return c.ProductType, nil
	case FieldQuoteIntent:
		return c.QuoteIntent, nil
	case FieldCompanyName:
		return c.CompanyName, nil
	case FieldLineOfBusiness:
		return c.LineOfBusiness, nil
	case FieldLocation:
		return c.Location, nil
	case FieldUsageOrResale:
		return c.UsageOrResale, nil
	case FieldEmail:
		return c.Email, nil
	case FieldPhone:
		return c.Phone, nil
	case FieldWebsite:
		return c.Website, nil
	}
	return "", ErrUnknownField
}

// SetField assigns a flat generic field by canonical name.
func (c *Conversation) SetField(name, value string) error {
	switch name {
	case FieldName:
		c.Name = value
	case FieldSurname:
		c.Surname = value
	case FieldHelpType:
		c.HelpType = HelpType(value)
	case FieldProductType:
		c.ProductType = value
	case FieldQuoteIntent:
		c.QuoteIntent = value
	case FieldCompanyName:
		c.CompanyName = value
	case FieldLineOfBusiness:
		c.LineOfBusiness = value
	case FieldLocation:
		c.Location = value
	case FieldUsageOrResale:
		c.UsageOrResale = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	case FieldWebsite:
		c.Website = value
	default:
		return ErrUnknownField
	}
	return nil
}

// AppendMessage adds a transcript entry and bumps the update timestamp.
func (c *Conversation) AppendMessage(role Role, content string, qt QuestionType) Message {
	msg := Message{
		ID:           uuid.NewString(),
		Role:         role,
		Content:      content,
		QuestionType: qt,
		Timestamp:    time.Now().UTC(),
	}
	c.Transcript = append(c.Transcript, msg)
	c.UpdatedAt = msg.Timestamp
	return msg
}

// AppendQuestion records an outbound question, tagging the targeted slot.
func (c *Conversation) AppendQuestion(content string, qt QuestionType, field string) Message {
	c.AppendMessage(RoleAssistant, content, qt)
	idx := len(c.Transcript) - 1
	if field != "" {
		c.Transcript[idx].QuestionField = field
	}
	return c.Transcript[idx]
}

// LastAssistantMessage returns the most recent assistant transcript entry.
func (c *Conversation) LastAssistantMessage() (Message, bool) {
	for i := len(c.Transcript) - 1; i >= 0; i-- {
		if c.Transcript[i].Role == RoleAssistant {
			return c.Transcript[i], true
		}
	}
	return Message{}, false
}

// LastQuestionType returns the question tag of the most recent assistant
// message, or QuestionTypeNone when nothing has been asked yet.
func (c *Conversation) LastQuestionType() QuestionType {
	for i := len(c.Transcript) - 1; i >= 0; i-- {
		if c.Transcript[i].Role == RoleAssistant {
			return c.Transcript[i].QuestionType
		}
	}
	return QuestionTypeNone
}

// Clone returns a deep copy. The dialogue driver mutates a clone per turn so
// a failed turn never persists a half-applied state.
func (c *Conversation) Clone() *Conversation {
	dup := *c
	dup.ProductDetails = make(map[string]string, len(c.ProductDetails))
	for k, v := range c.ProductDetails {
		dup.ProductDetails[k] = v
	}
	dup.Transcript = make([]Message, len(c.Transcript))
	copy(dup.Transcript, c.Transcript)
	return &dup
}

// IsSentinel reports whether a value is one of the declined/unknown markers.
func IsSentinel(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == AnswerNotSpecified || v == AnswerDoesNotHave
}

// IsSubstantive reports whether a value is non-empty and not a sentinel.
// Fields holding a substantive value are protected from later overwrite.
func IsSubstantive(value string) bool {
	return strings.TrimSpace(value) != "" && !IsSentinel(value)
}

// IsNegative reports whether an answer declines the offer. Used for the
// quote-intent early termination.
func IsNegative(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "no", "nope", "n", "no thanks", "no thank you", "not now", "not interested":
		return true
	}
	return strings.HasPrefix(v, "no,") || strings.HasPrefix(v, "no ")
}

// FullNameKnown reports whether the lead's full name is resolved: the name
// holds at least two tokens, or an explicit surname was captured.
func (c *Conversation) FullNameKnown() bool {
	return len(strings.Fields(c.Name)) >= 2 || IsSubstantive(c.Surname)
}

// FullName returns the display name composed from the name and surname slots.
func (c *Conversation) FullName() string {
	if IsSubstantive(c.Surname) && !strings.Contains(c.Name, c.Surname) {
		return strings.TrimSpace(c.Name + " " + c.Surname)
	}
	return c.Name
}
