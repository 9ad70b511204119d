// Package engine implements the slot-filling dialogue engine: the merge
// policy for extracted fields, the priority-ordered next-question selector,
// the completion predicate, and the per-turn driver that ties them together.
package engine

import (
	"log/slog"
	"strings"

	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// Extraction is the field mapping the extractor produces for one turn.
// Fields holds flat generic slots keyed by their canonical names;
// ProductDetails holds product-specific answers keyed by catalog field name.
// Either part may be empty.
type Extraction struct {
	Fields         map[string]string `json:"fields,omitempty"`
	ProductDetails map[string]string `json:"product_details,omitempty"`
}

// IsEmpty reports whether the extraction carries no values at all.
func (e Extraction) IsEmpty() bool {
	return len(e.Fields) == 0 && len(e.ProductDetails) == 0
}

// Merge applies one turn's extraction to the conversation, field by field,
// and returns the canonical names of the fields that changed.
//
// Precedence per pair: empty values are rejected; a field already holding a
// substantive (non-sentinel) value is not overwritten, except quote intent,
// which the lead may revise; a surname is concatenated onto an existing name;
// a product type is validated against the catalog and dropped with a log when
// unrecognized; everything else assigns directly. Product details always
// union into the nested mapping, later keys overwriting same-named keys.
// After all pairs, a set product type with an unset help type infers
// help type "product".
//
// Merge performs no I/O and never fails: malformed pairs are logged and
// dropped. A completed conversation is left untouched.
func Merge(cat *catalog.Catalog, conv *models.Conversation, ex Extraction) []string {
	if conv.Completed {
		slog.Debug("Merge skipped for completed conversation", "userID", conv.UserID)
		return nil
	}

	var changed []string

	// Flat fields first, in canonical order, so a product type extracted this
	// turn admits detail answers from the same turn.
	for _, key := range models.GenericFields {
		value, ok := ex.Fields[key]
		if !ok {
			continue
		}
		if mergeField(cat, conv, key, value) {
			changed = append(changed, key)
		}
	}
	for key := range ex.Fields {
		if !isGenericField(key) {
			slog.Warn("Merge dropping unknown field", "userID", conv.UserID, "field", key)
		}
	}

	if mergeProductDetails(cat, conv, ex.ProductDetails) {
		changed = append(changed, models.FieldProductDetails)
	}

	// Cross-field inference: a known product type implies a product inquiry.
	if conv.ProductType != "" && conv.HelpType == "" {
		conv.HelpType = models.HelpTypeProduct
		changed = append(changed, models.FieldHelpType)
		slog.Debug("Merge inferred help type from product type", "userID", conv.UserID, "productType", conv.ProductType)
	}

	return changed
}

func mergeField(cat *catalog.Catalog, conv *models.Conversation, key, value string) bool {
	if value == "" {
		return false
	}

	current, err := conv.Field(key)
	if err != nil {
		slog.Warn("Merge dropping unknown field", "userID", conv.UserID, "field", key)
		return false
	}
	// Substantive values are protected from later overwrite; an ambiguous
	// utterance must not clobber confirmed data. Quote intent is the one
	// revisable field.
	if key != models.FieldQuoteIntent && models.IsSubstantive(current) {
		slog.Debug("Merge keeping existing value", "userID", conv.UserID, "field", key, "existing", current)
		return false
	}

	switch key {
	case models.FieldName:
		// A surname may already be on file when the name arrives; compose the
		// two so the stored name covers both, unless the extractor handed us
		// the full name in one piece.
		if models.IsSubstantive(conv.Surname) && !strings.Contains(value, conv.Surname) {
			conv.Name = value + " " + conv.Surname
		} else {
			conv.Name = value
		}
		return true
	case models.FieldSurname:
		conv.Surname = value
		if models.IsSubstantive(conv.Name) {
			conv.Name = conv.Name + " " + value
		}
		return true
	case models.FieldProductType:
		if !cat.IsKnownType(value) {
			slog.Warn("Merge dropping unrecognized product type", "userID", conv.UserID, "value", value)
			return false
		}
		conv.ProductType = value
		return true
	case models.FieldQuoteIntent:
		if conv.QuoteIntent == value {
			return false
		}
		conv.QuoteIntent = value
		return true
	default:
		if err := conv.SetField(key, value); err != nil {
			slog.Warn("Merge dropping unknown field", "userID", conv.UserID, "field", key)
			return false
		}
		return true
	}
}

func mergeProductDetails(cat *catalog.Catalog, conv *models.Conversation, details map[string]string) bool {
	if len(details) == 0 {
		return false
	}
	if conv.ProductType == "" {
		slog.Warn("Merge dropping product details without a product type", "userID", conv.UserID, "count", len(details))
		return false
	}

	changed := false
	for key, value := range details {
		if value == "" {
			continue
		}
		if _, ok := cat.FieldDescriptor(conv.ProductType, key); !ok {
			slog.Warn("Merge dropping detail not declared for product type",
				"userID", conv.UserID, "productType", conv.ProductType, "field", key)
			continue
		}
		if conv.ProductDetails[key] == value {
			continue
		}
		conv.ProductDetails[key] = value
		changed = true
	}
	return changed
}

func isGenericField(key string) bool {
	for _, name := range models.GenericFields {
		if name == key {
			return true
		}
	}
	return false
}
