package engine

import (
	"strings"

	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// IsComplete reports whether every required slot holds a satisfying value:
// a two-token name, a help type, and for product inquiries a product type,
// every required detail field, a confirmed quote intent, and every required
// company field. A help type of "other" is sufficient on its own.
//
// IsComplete and Select agree on the product/company branch: once Select
// returns nil there, IsComplete is true. They intentionally diverge on the
// two early-termination branches. A declined quote makes Select return nil
// while IsComplete stays false, since the company slots were never filled.
// A help type of "other" reached with a surname on file but a single-token
// name likewise ends the interview without satisfying the two-token name
// rule. Callers that need "nothing left to ask" must use Select; callers
// that need "fully qualified lead" must use IsComplete.
func IsComplete(cat *catalog.Catalog, conv *models.Conversation) bool {
	if len(strings.Fields(conv.Name)) < 2 {
		return false
	}
	if conv.HelpType == "" {
		return false
	}
	if conv.HelpType == models.HelpTypeOther {
		return true
	}

	if conv.ProductType == "" {
		return false
	}
	for _, field := range cat.Fields(conv.ProductType) {
		if !field.Required {
			continue
		}
		if !answered(field, conv.ProductDetails[field.Name]) {
			return false
		}
	}

	if conv.QuoteIntent == "" || models.IsNegative(conv.QuoteIntent) {
		return false
	}
	for _, field := range cat.CompanyFields() {
		if !field.Required {
			continue
		}
		value, err := conv.Field(field.Name)
		if err != nil || !answered(field, value) {
			return false
		}
	}
	return true
}
