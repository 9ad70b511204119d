// Package crm keeps a CRM contact in sync with the conversation as fields
// are confirmed. The HubSpot contact API is a plain REST surface, so this
// package talks to it directly over net/http.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// DefaultBaseURL is the HubSpot contacts endpoint.
const DefaultBaseURL = "https://api.hubapi.com/crm/v3/objects/contacts"

// productInterest maps catalog type ids to the product-interest options
// registered on the CRM contact property.
var productInterest = map[string]string{
	"welder":         "Shindaiwa welders",
	"platform":       "LGMG aerial platforms",
	"lighting_tower": "Trime lighting towers",
	"generator":      "Generators",
	"compressor":     "Airman compressors",
	"forklift":       "LGMG forklifts",
	"telehandler":    "LGMG telehandlers",
	"rammer":         "Sakai rammers",
	"breaker":        "Toku pneumatic breakers",
	"water_pump":     "Koshin water pumps",
	"rebar_cutter":   "Alpha C rebar cutters",
	"rebar_bender":   "Alpha C rebar benders",
}

// DefaultBusinessLines are the options registered on the line-of-business
// contact property. Values outside the list fall back to the first option.
var DefaultBusinessLines = []string{
	"Machinery sales",
	"Machinery rental",
	"Distributor",
	"Trading company",
	"Mining",
	"Construction",
	"Other",
}

// Opts holds configuration options for the HubSpot notifier.
type Opts struct {
	AccessToken   string
	BaseURL       string
	HTTPClient    *http.Client
	BusinessLines []string
}

// Option configures the HubSpot notifier.
type Option func(*Opts)

// WithBaseURL overrides the contacts endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// WithBusinessLines overrides the allowed line-of-business options.
func WithBusinessLines(lines []string) Option {
	return func(o *Opts) { o.BusinessLines = lines }
}

// HubSpot pushes confirmed conversation fields onto a HubSpot contact. One
// contact is lazily created per user id and cached for the process lifetime.
type HubSpot struct {
	opts Opts

	mu       sync.Mutex
	contacts map[string]string
}

// NewHubSpot creates a HubSpot notifier with the given access token.
func NewHubSpot(accessToken string, opts ...Option) (*HubSpot, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("hubspot access token is required")
	}
	cfg := Opts{
		AccessToken:   accessToken,
		BaseURL:       DefaultBaseURL,
		HTTPClient:    &http.Client{Timeout: 15 * time.Second},
		BusinessLines: DefaultBusinessLines,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HubSpot{opts: cfg, contacts: make(map[string]string)}, nil
}

// ContactConfirmed creates the contact on first sight of a user and patches
// the properties derived from the fields the merge confirmed this turn.
func (h *HubSpot) ContactConfirmed(ctx context.Context, conv *models.Conversation, changed []string) error {
	contactID, err := h.ensureContact(ctx, conv.UserID)
	if err != nil {
		return err
	}
	props := h.properties(conv, changed)
	if len(props) == 0 {
		return nil
	}
	slog.Debug("CRM updating contact", "contactID", contactID, "properties", len(props))
	return h.patchContact(ctx, contactID, props)
}

// ContactReset deletes the contact created for a user, matching the
// conversation reset command.
func (h *HubSpot) ContactReset(ctx context.Context, userID string) error {
	h.mu.Lock()
	contactID, ok := h.contacts[userID]
	delete(h.contacts, userID)
	h.mu.Unlock()
	if !ok {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.opts.BaseURL+"/"+contactID, nil)
	if err != nil {
		return fmt.Errorf("failed to build contact delete request: %w", err)
	}
	if err := h.do(req, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", contactID, err)
	}
	slog.Info("CRM contact deleted", "contactID", contactID, "userID", userID)
	return nil
}

// properties maps confirmed conversation fields to contact properties. Only
// fields named in changed are sent; the conversation already holds the merged
// values, so protection rules have been applied before this point.
func (h *HubSpot) properties(conv *models.Conversation, changed []string) map[string]string {
	props := make(map[string]string)
	for _, field := range changed {
		switch field {
		case models.FieldName, models.FieldSurname:
			props["firstname"] = conv.FullName()
		case models.FieldProductType:
			if interest, ok := productInterest[conv.ProductType]; ok {
				props["product_of_interest"] = interest
			}
		case models.FieldProductDetails:
			if len(conv.ProductDetails) > 0 {
				if details, err := json.Marshal(conv.ProductDetails); err == nil {
					props["machinery_requirements"] = string(details)
				}
			}
		case models.FieldCompanyName:
			props["company"] = conv.CompanyName
		case models.FieldLineOfBusiness:
			props["line_of_business"] = h.businessLine(conv.LineOfBusiness)
		case models.FieldLocation:
			props["state_region"] = conv.Location
		case models.FieldEmail:
			props["email"] = conv.Email
		case models.FieldPhone:
			props["phone"] = conv.Phone
		case models.FieldWebsite:
			props["business_website"] = conv.Website
		}
	}
	return props
}

// businessLine snaps a free-form answer onto the property's registered
// options, falling back to the first option for anything unrecognized.
func (h *HubSpot) businessLine(value string) string {
	for _, line := range h.opts.BusinessLines {
		if line == value {
			return value
		}
	}
	if len(h.opts.BusinessLines) == 0 {
		return value
	}
	return h.opts.BusinessLines[0]
}

func (h *HubSpot) ensureContact(ctx context.Context, userID string) (string, error) {
	h.mu.Lock()
	contactID, ok := h.contacts[userID]
	h.mu.Unlock()
	if ok {
		return contactID, nil
	}

	body, err := json.Marshal(map[string]any{
		"properties": map[string]string{
			"bot_conversation_id": "conv_" + userID,
			"phone":               userID,
			"lifecyclestage":      "lead",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode contact: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.opts.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build contact create request: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := h.do(req, http.StatusCreated, &created); err != nil {
		return "", fmt.Errorf("failed to create contact for %s: %w", userID, err)
	}
	slog.Info("CRM contact created", "contactID", created.ID, "userID", userID)

	h.mu.Lock()
	h.contacts[userID] = created.ID
	h.mu.Unlock()
	return created.ID, nil
}

func (h *HubSpot) patchContact(ctx context.Context, contactID string, props map[string]string) error {
	body, err := json.Marshal(map[string]any{"properties": props})
	if err != nil {
		return fmt.Errorf("failed to encode contact update: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, h.opts.BaseURL+"/"+contactID, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build contact update request: %w", err)
	}
	if err := h.do(req, http.StatusOK, nil); err != nil {
		return fmt.Errorf("failed to update contact %s: %w", contactID, err)
	}
	return nil
}

func (h *HubSpot) do(req *http.Request, wantStatus int, out any) error {
	req.Header.Set("Authorization", "Bearer "+h.opts.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.opts.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
