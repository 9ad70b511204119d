package engine

import (
	"strings"

	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// Question is a next-question directive: the text to ask, why it is asked,
// and the slot it targets. Field names the detail field when Type is
// QuestionTypeProductDetail.
type Question struct {
	Text      string              `json:"question"`
	Rationale string              `json:"rationale"`
	Type      models.QuestionType `json:"question_type"`
	Field     string              `json:"field,omitempty"`
}

// Fixed question texts for the generic slots. Product-detail questions come
// from the catalog.
const (
	questionName        = "May I have your first name?"
	questionSurname     = "And your last name?"
	questionHelpType    = "How can we help you today? Are you looking for machinery, or something else?"
	questionProductType = "What type of machinery are you looking for?"
	questionQuoteIntent = "Would you like us to prepare a quote?"
	questionCompanyInfo = "I need the following company details to continue with the quote"
)

// Select returns the next question to ask, or nil when the interview has
// nothing left to ask. It walks a fixed priority list and short-circuits at
// the first unmet condition: earlier slots gate later ones, so a product
// detail is never requested before the product type is known and company
// data is only requested after the lead confirms quote intent.
//
// A nil result does not by itself mean the conversation is complete; see
// IsComplete for the two early-termination branches where they diverge.
func Select(cat *catalog.Catalog, conv *models.Conversation) *Question {
	// 1. Name.
	if !models.IsSubstantive(conv.Name) {
		return &Question{
			Text:      questionName,
			Rationale: "To address you properly",
			Type:      models.QuestionTypeName,
		}
	}

	// 2. Surname, unless the name already carries one.
	if !conv.FullNameKnown() {
		return &Question{
			Text:      questionSurname,
			Rationale: "To register the lead's full name",
			Type:      models.QuestionTypeSurname,
		}
	}

	// 3. Help type. A non-product inquiry ends the interview here.
	if conv.HelpType == "" {
		return &Question{
			Text:      questionHelpType,
			Rationale: "To route the conversation",
			Type:      models.QuestionTypeHelpType,
		}
	}
	if conv.HelpType == models.HelpTypeOther {
		return nil
	}

	// 4. Product type.
	if conv.ProductType == "" {
		return &Question{
			Text:      questionProductType,
			Rationale: "To know which equipment to recommend",
			Type:      models.QuestionTypeProductType,
		}
	}

	// 5. First unanswered detail field, in catalog order. Whether a sentinel
	// answer counts is a per-field catalog decision; for detail fields it
	// normally does, since the lead was asked and responded.
	for _, field := range cat.Fields(conv.ProductType) {
		if !answered(field, conv.ProductDetails[field.Name]) {
			return &Question{
				Text:      field.Question,
				Rationale: field.Rationale,
				Type:      models.QuestionTypeProductDetail,
				Field:     field.Name,
			}
		}
	}

	// 6. Quote intent. A declined quote ends the interview.
	if conv.QuoteIntent == "" {
		return &Question{
			Text:      questionQuoteIntent,
			Rationale: "To know whether to collect company data",
			Type:      models.QuestionTypeQuoteIntent,
		}
	}
	if models.IsNegative(conv.QuoteIntent) {
		return nil
	}

	// 7. Company fields, requested as one combined prompt naming every
	// still-pending field.
	if pending := pendingCompanyFields(cat, conv); len(pending) > 0 {
		return &Question{
			Text:      questionCompanyInfo + ": " + strings.Join(pending, ", ") + ".",
			Rationale: "To prepare the quote",
			Type:      models.QuestionTypeCompanyInfo,
		}
	}

	// 8. Everything answered.
	return nil
}

func pendingCompanyFields(cat *catalog.Catalog, conv *models.Conversation) []string {
	var pending []string
	for _, field := range cat.CompanyFields() {
		if !field.Required {
			continue
		}
		value, err := conv.Field(field.Name)
		if err != nil || !answered(field, value) {
			pending = append(pending, field.Question)
		}
	}
	return pending
}

// answered reports whether a recorded value satisfies a field. An empty value
// never does; a sentinel does only when the field's catalog entry says so.
func answered(field catalog.FieldDescriptor, value string) bool {
	if value == "" {
		return false
	}
	if models.IsSentinel(value) {
		return field.CountsNegativeAsAnswered
	}
	return true
}
