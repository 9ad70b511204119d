// Package extraction provides GenAI-backed field extraction and reply
// generation using the OpenAI API.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/engine"
	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

// ErrNoChoicesReturned indicates the model response contained no choices.
var ErrNoChoicesReturned = errors.New("no choices returned")

// ErrAPIKeyNotSet indicates no API key was provided or found in the environment.
var ErrAPIKeyNotSet = errors.New("OPENAI_API_KEY not set")

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// completionsAdapter bridges the variadic SDK call to chatService.
type completionsAdapter struct {
	completions openai.ChatCompletionService
}

func (a completionsAdapter) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := a.completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Opts holds configuration options for the extraction client.
type Opts struct {
	// APIKey is the OpenAI API key. Falls back to OPENAI_API_KEY.
	APIKey string
	// Model is the chat model id. Defaults to gpt-4o-mini.
	Model string
}

// Option configures the extraction client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client implements field extraction, reply generation, and inventory
// question detection over the OpenAI chat completion API.
type Client struct {
	chat  chatService
	model string
	cat   *catalog.Catalog
}

// NewClient creates an extraction client for the given catalog.
func NewClient(cat *catalog.Catalog, opts ...Option) (*Client, error) {
	cfg := Opts{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	slog.Debug("Extraction client initialized", "model", cfg.Model)
	return &Client{
		chat:  completionsAdapter{completions: cli.Chat.Completions},
		model: cfg.Model,
		cat:   cat,
	}, nil
}

// wireExtraction is the JSON shape the model is instructed to emit.
type wireExtraction struct {
	Fields         map[string]string `json:"fields"`
	ProductDetails map[string]string `json:"product_details"`
}

// Extract maps one inbound message to conversation field values.
//
// A plain negative answer to a pending product-detail or company question is
// resolved without a model call: the tag recorded on the last outbound
// question names the field the answer belongs to, so "no" becomes the
// "does not have" sentinel for exactly that field.
func (c *Client) Extract(ctx context.Context, message string, conv *models.Conversation, lastQuestion *engine.Question) (engine.Extraction, error) {
	if ex, ok := shortAnswerExtraction(message, lastQuestion); ok {
		slog.Debug("Extraction resolved from question tag", "userID", conv.UserID, "questionType", lastQuestion.Type)
		return ex, nil
	}

	content, err := c.complete(ctx, c.extractionSystemPrompt(conv, lastQuestion), message)
	if err != nil {
		return engine.Extraction{}, fmt.Errorf("extraction request failed: %w", err)
	}

	var wire wireExtraction
	if err := json.Unmarshal([]byte(stripFences(content)), &wire); err != nil {
		return engine.Extraction{}, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return engine.Extraction{Fields: wire.Fields, ProductDetails: wire.ProductDetails}, nil
}

// GenerateReply rewrites the next question as a short conversational message.
func (c *Client) GenerateReply(ctx context.Context, req engine.ReplyRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are a courteous sales assistant for an industrial machinery company, chatting with a lead on WhatsApp. ")
	sb.WriteString("Write a single short reply in the user's language. Acknowledge what the user just said, then ask exactly the question given below. ")
	sb.WriteString("Do not ask anything else, do not invent product information, and do not repeat questions that were already answered.\n\n")
	if req.InventoryNote != "" {
		sb.WriteString("First share this stock information with the user:\n")
		sb.WriteString(req.InventoryNote)
		sb.WriteString("\n\n")
	}
	if req.NextQuestion != nil {
		sb.WriteString("Question to ask: ")
		sb.WriteString(req.NextQuestion.Text)
		if req.NextQuestion.Rationale != "" {
			sb.WriteString("\nWhy it is asked: ")
			sb.WriteString(req.NextQuestion.Rationale)
		}
		sb.WriteString("\n")
	}
	if req.Conversation != nil && req.Conversation.Name != "" {
		sb.WriteString("The user's name is ")
		sb.WriteString(req.Conversation.FullName())
		sb.WriteString(".\n")
	}
	return c.complete(ctx, sb.String(), req.UserMessage)
}

// IsInventoryQuestion reports whether the message asks about stock or
// availability rather than answering the interview.
func (c *Client) IsInventoryQuestion(ctx context.Context, message string) (bool, error) {
	const prompt = "You classify one chat message from a machinery sales conversation. " +
		"Answer with the single word YES if the message asks about stock, availability, " +
		"models on hand, or what equipment can be offered. Answer NO otherwise."
	content, err := c.complete(ctx, prompt, message)
	if err != nil {
		return false, fmt.Errorf("inventory classification failed: %w", err)
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(content)), "YES"), nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// extractionSystemPrompt describes the target schema and the conversation
// context so the model returns only fields the user actually stated.
func (c *Client) extractionSystemPrompt(conv *models.Conversation, lastQuestion *engine.Question) string {
	var sb strings.Builder
	sb.WriteString("You extract structured lead information from one chat message in a machinery sales conversation. ")
	sb.WriteString("Return only a JSON object of the form {\"fields\": {...}, \"product_details\": {...}} with no surrounding text.\n\n")

	sb.WriteString("Allowed keys under \"fields\": ")
	sb.WriteString(strings.Join(models.GenericFields, ", "))
	sb.WriteString(".\n")
	sb.WriteString("\"help_type\" must be \"")
	sb.WriteString(string(models.HelpTypeProduct))
	sb.WriteString("\" when the user wants machinery or a quote, \"")
	sb.WriteString(string(models.HelpTypeOther))
	sb.WriteString("\" for any other request.\n")
	sb.WriteString("\"product_type\" must be one of: ")
	sb.WriteString(strings.Join(c.cat.TypeIDs(), ", "))
	sb.WriteString(".\n")

	if conv != nil && conv.ProductType != "" {
		fields := c.cat.Fields(conv.ProductType)
		if len(fields) > 0 {
			sb.WriteString("Allowed keys under \"product_details\" for ")
			sb.WriteString(conv.ProductType)
			sb.WriteString(": ")
			names := make([]string, 0, len(fields))
			for _, f := range fields {
				names = append(names, f.Name)
			}
			sb.WriteString(strings.Join(names, ", "))
			sb.WriteString(".\n")
		}
	}

	sb.WriteString("\nOmit every key the message says nothing about. ")
	sb.WriteString("When the user declines or says they do not have something, use the value \"")
	sb.WriteString(models.AnswerDoesNotHave)
	sb.WriteString("\". When the user explicitly refuses to specify, use \"")
	sb.WriteString(models.AnswerNotSpecified)
	sb.WriteString("\".\n")

	if lastQuestion != nil {
		sb.WriteString("\nThe assistant's last question was: \"")
		sb.WriteString(lastQuestion.Text)
		sb.WriteString("\"")
		if lastQuestion.Field != "" {
			sb.WriteString(" (it asked for the \"")
			sb.WriteString(lastQuestion.Field)
			sb.WriteString("\" field)")
		}
		sb.WriteString(". Interpret short answers as answers to that question.\n")
	}
	return sb.String()
}

// shortAnswerExtraction resolves a bare negative answer deterministically
// when the last question targeted a single known field.
func shortAnswerExtraction(message string, lastQuestion *engine.Question) (engine.Extraction, bool) {
	if lastQuestion == nil || !models.IsNegative(message) {
		return engine.Extraction{}, false
	}
	switch lastQuestion.Type {
	case models.QuestionTypeProductDetail:
		if lastQuestion.Field == "" {
			return engine.Extraction{}, false
		}
		return engine.Extraction{
			ProductDetails: map[string]string{lastQuestion.Field: models.AnswerDoesNotHave},
		}, true
	case models.QuestionTypeQuoteIntent:
		return engine.Extraction{
			Fields: map[string]string{models.FieldQuoteIntent: strings.TrimSpace(message)},
		}, true
	}
	return engine.Extraction{}, false
}

// stripFences removes a Markdown code fence around a JSON payload and trims
// to the outermost object, tolerating chatty model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
