package llm

import (
	"context"

	"github.com/zepgraph/zepgraph/pkg/types"
)

// Client defines the interface for language model operations. Every
// provider adapter in this package (Anthropic, OpenAI-compatible) implements it.
type Client interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, messages []types.Message) (*types.Response, error)

	// ChatWithStructuredOutput sends a chat completion request with structured output.
	ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error)

	// GetCapabilities returns the list of capabilities supported by this client.
	GetCapabilities() []TaskCapability

	// Close cleans up any resources.
	Close() error
}

// TaskCapability identifies an NLP task a client can perform.
type TaskCapability string

const (
	TaskTextGeneration         TaskCapability = "text_generation"
	TaskSummarization          TaskCapability = "summarization"
	TaskNamedEntityRecognition TaskCapability = "ner"
	TaskRelationExtraction     TaskCapability = "relation_extraction"
)

const (
	// RoleSystem represents a system message.
	RoleSystem types.Role = "system"
	// RoleUser represents a user message.
	RoleUser types.Role = "user"
	// RoleAssistant represents an assistant message.
	RoleAssistant types.Role = "assistant"
)

// ModelSize selects which configured model (main or small) a request uses.
type ModelSize string

const (
	ModelSizeSmall ModelSize = "small"
	ModelSizeLarge ModelSize = "large"
)

// LLMConfig holds configuration for LLM clients, matching the shape
// consumed by the Anthropic and OpenAI-compatible adapters.
type LLMConfig struct {
	// APIKey is the authentication key for accessing the LLM API.
	APIKey string `json:"-"`

	Model       string  `json:"model,omitempty"`
	SmallModel  string  `json:"small_model,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	TopP        float32 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	MinP        float32 `json:"min_p,omitempty"`
	MaxRetries  int     `json:"max_retries,omitempty"`
}

// NewLLMConfig creates a new LLMConfig with default values.
func NewLLMConfig() *LLMConfig {
	return &LLMConfig{
		Temperature: 1.0,
		MaxTokens:   8192,
	}
}

// WithAPIKey sets the API key.
func (c *LLMConfig) WithAPIKey(apiKey string) *LLMConfig {
	c.APIKey = apiKey
	return c
}

// WithModel sets the model.
func (c *LLMConfig) WithModel(model string) *LLMConfig {
	c.Model = model
	return c
}

// WithBaseURL sets the base URL.
func (c *LLMConfig) WithBaseURL(baseURL string) *LLMConfig {
	c.BaseURL = baseURL
	return c
}
