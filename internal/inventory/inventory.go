// Package inventory matches conversation requirements against the machinery
// currently in stock and renders the matches for a chat reply.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// Item is one stocked machine. Specs are keyed by the detail field names of
// the item's product type, with free-form values as printed in the vendor
// datasheets.
type Item struct {
	Model string            `json:"model"`
	Type  string            `json:"type"`
	Specs map[string]string `json:"specs"`
}

// Service answers which stocked items satisfy a set of requested details.
type Service struct {
	cat   *catalog.Catalog
	items []Item
}

// NewService creates an inventory service over the given catalog and stock
// list. A nil items slice means the default stock.
func NewService(cat *catalog.Catalog, items []Item) *Service {
	if items == nil {
		items = DefaultItems()
	}
	return &Service{cat: cat, items: items}
}

// FindMatches returns the stocked items of the given product type whose specs
// satisfy every substantive requested detail. Sentinel and empty values are
// not constraints. An empty product type matches nothing.
func (s *Service) FindMatches(productType string, details map[string]string) []Item {
	if productType == "" || !s.cat.IsKnownType(productType) {
		return nil
	}
	var matches []Item
	for _, item := range s.items {
		if item.Type != productType {
			continue
		}
		if s.satisfies(item, productType, details) {
			matches = append(matches, item)
		}
	}
	return matches
}

// Describe renders the matching stock as a short note for the reply, or ""
// when nothing matches.
func (s *Service) Describe(_ context.Context, productType string, details map[string]string) (string, error) {
	matches := s.FindMatches(productType, details)
	if len(matches) == 0 {
		if productType == "" {
			return "", nil
		}
		cfg, ok := s.cat.GetConfig(productType)
		if !ok {
			return "", nil
		}
		return fmt.Sprintf("We do not currently have a %s in stock that matches those requirements.", strings.ToLower(cfg.DisplayName)), nil
	}

	var sb strings.Builder
	sb.WriteString("We currently have in stock:")
	for _, item := range matches {
		sb.WriteString("\n- ")
		sb.WriteString(item.Model)
		if line := specLine(s.cat, item); line != "" {
			sb.WriteString(" (")
			sb.WriteString(line)
			sb.WriteString(")")
		}
	}
	return sb.String(), nil
}

// satisfies checks every substantive requested detail against the item specs
// using the comparison operator declared for the field.
func (s *Service) satisfies(item Item, productType string, details map[string]string) bool {
	for name, want := range details {
		if want == "" || models.IsSentinel(want) {
			continue
		}
		field, ok := s.cat.FieldDescriptor(productType, name)
		if !ok {
			continue
		}
		have, ok := item.Specs[name]
		if !ok {
			return false
		}
		if !compare(field.CompareOp, have, want) {
			slog.Debug("Inventory item rejected", "model", item.Model, "field", name, "have", have, "want", want)
			return false
		}
	}
	return true
}

// compare applies one comparison operator. Numeric operators parse the first
// number of the requested value and the most generous number of the spec, so
// a range like "30-500 AMP" satisfies any requirement up to 500.
func compare(op catalog.CompareOp, have, want string) bool {
	switch op {
	case catalog.CompareGte:
		h, okH := upperNumber(have)
		w, okW := firstNumber(want)
		return okH && okW && h >= w
	case catalog.CompareLte:
		h, okH := lowerNumber(have)
		w, okW := firstNumber(want)
		return okH && okW && h <= w
	case catalog.CompareContains:
		return strings.Contains(normalize(have), normalize(want))
	default:
		return normalize(have) == normalize(want)
	}
}

// specLine formats the spec values of an item in the catalog's field order.
func specLine(cat *catalog.Catalog, item Item) string {
	var parts []string
	for _, field := range cat.Fields(item.Type) {
		value, ok := item.Specs[field.Name]
		if !ok {
			continue
		}
		if field.Unit != "" && !strings.Contains(strings.ToLower(value), strings.ToLower(field.Unit)) {
			value += " " + field.Unit
		}
		parts = append(parts, value)
	}
	return strings.Join(parts, ", ")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// firstNumber extracts the first decimal number in a string.
func firstNumber(s string) (float64, bool) {
	nums := numbers(s)
	if len(nums) == 0 {
		return 0, false
	}
	return nums[0], true
}

// upperNumber extracts the largest number, so a range yields its upper bound.
func upperNumber(s string) (float64, bool) {
	nums := numbers(s)
	if len(nums) == 0 {
		return 0, false
	}
	max := nums[0]
	for _, n := range nums[1:] {
		if n > max {
			max = n
		}
	}
	return max, true
}

// lowerNumber extracts the smallest number, so a range yields its lower bound.
func lowerNumber(s string) (float64, bool) {
	nums := numbers(s)
	if len(nums) == 0 {
		return 0, false
	}
	min := nums[0]
	for _, n := range nums[1:] {
		if n < min {
			min = n
		}
	}
	return min, true
}

func numbers(s string) []float64 {
	var out []float64
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		if n, err := strconv.ParseFloat(strings.TrimSuffix(cur.String(), "."), 64); err == nil {
			out = append(out, n)
		}
		cur.Reset()
	}
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r == '.' && cur.Len() > 0) {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}
