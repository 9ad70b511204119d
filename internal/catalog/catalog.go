// Package catalog defines the field registry that drives the lead interview.
//
// A Catalog holds one ProductConfig per machinery category plus the fixed set
// of company fields. It is read-only after construction and injected into the
// dialogue engine; product-specific interview behavior is data here, not code.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// ValueType describes how a field's answer is interpreted.
type ValueType string

const (
	ValueTypeText      ValueType = "text"
	ValueTypeNumber    ValueType = "number"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeSelection ValueType = "selection"
)

// CompareOp is the operator used when matching a field against inventory.
type CompareOp string

const (
	CompareEq       CompareOp = "eq"
	CompareGte      CompareOp = "gte"
	CompareLte      CompareOp = "lte"
	CompareContains CompareOp = "contains"
)

// FieldDescriptor is one slot the interview collects. Immutable after load.
type FieldDescriptor struct {
	Name      string    `json:"name"`
	Question  string    `json:"question"`
	Rationale string    `json:"rationale"`
	ValueType ValueType `json:"value_type"`
	Required  bool      `json:"required"`
	CompareOp CompareOp `json:"comparison_operator"`
	Unit      string    `json:"unit,omitempty"`
	// CountsNegativeAsAnswered controls whether a sentinel answer
	// ("not specified"/"does not have") satisfies this field for the
	// completion predicate. Detail fields default to true, company
	// fields to false.
	CountsNegativeAsAnswered bool `json:"counts_negative_as_answered"`
}

// ProductConfig declares the interview sequence for one machinery category.
// Field order is the question order; it is never reordered at runtime.
type ProductConfig struct {
	TypeID      string            `json:"type_id"`
	DisplayName string            `json:"display_name"`
	Fields      []FieldDescriptor `json:"fields"`
}

// Catalog is the injected registry of product configs and company fields.
type Catalog struct {
	configs map[string]ProductConfig
	order   []string
	company []FieldDescriptor
}

// New builds a catalog from product configs, preserving their order.
// Company fields use the default set unless overridden with WithCompanyFields.
func New(configs []ProductConfig, opts ...Option) *Catalog {
	c := &Catalog{
		configs: make(map[string]ProductConfig, len(configs)),
		company: defaultCompanyFields(),
	}
	for _, cfg := range configs {
		if _, dup := c.configs[cfg.TypeID]; dup {
			continue
		}
		c.configs[cfg.TypeID] = cfg
		c.order = append(c.order, cfg.TypeID)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Catalog during construction.
type Option func(*Catalog)

// WithCompanyFields overrides the company field set.
func WithCompanyFields(fields []FieldDescriptor) Option {
	return func(c *Catalog) {
		c.company = fields
	}
}

// LoadFile reads product configs from a JSON file. The file holds an array of
// ProductConfig objects in interview order.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var configs []ProductConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return New(configs, opts...), nil
}

// GetConfig returns the configuration for a product type.
func (c *Catalog) GetConfig(typeID string) (ProductConfig, bool) {
	cfg, ok := c.configs[typeID]
	return cfg, ok
}

// IsKnownType reports whether a product type identifier is declared.
func (c *Catalog) IsKnownType(typeID string) bool {
	_, ok := c.configs[typeID]
	return ok
}

// TypeIDs returns all declared product type identifiers in catalog order.
func (c *Catalog) TypeIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Fields returns the ordered detail fields for a product type. An unknown
// type yields an empty list, never an error; the interview simply has no
// detail questions to ask.
func (c *Catalog) Fields(typeID string) []FieldDescriptor {
	cfg, ok := c.configs[typeID]
	if !ok {
		return nil
	}
	return cfg.Fields
}

// RequiredFields returns the names of the required detail fields for a
// product type, in interview order.
func (c *Catalog) RequiredFields(typeID string) []string {
	var names []string
	for _, f := range c.Fields(typeID) {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldDescriptor looks up one detail field by product type and name.
func (c *Catalog) FieldDescriptor(typeID, name string) (FieldDescriptor, bool) {
	for _, f := range c.Fields(typeID) {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// CompanyFields returns the company fields collected before closing a lead.
func (c *Catalog) CompanyFields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(c.company))
	copy(out, c.company)
	return out
}

// RequiredCompanyFields returns the names of the required company fields.
func (c *Catalog) RequiredCompanyFields() []string {
	var names []string
	for _, f := range c.company {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}
