package nlp

import (
	"context"

	"github.com/zepgraph/zepgraph/pkg/llm"
	"github.com/zepgraph/zepgraph/pkg/types"
)

// FromLLMClient adapts an llm.Client into the Client interface used by the
// modeler and maintenance packages. The two interfaces have identical method
// shapes but distinct TaskCapability types, so they don't satisfy each other
// directly. Returns nil if c is nil so callers that rely on a nil field to
// signal "fall back to the default client" keep working.
func FromLLMClient(c llm.Client) Client {
	if c == nil {
		return nil
	}
	return &llmClientAdapter{inner: c}
}

type llmClientAdapter struct {
	inner llm.Client
}

func (a *llmClientAdapter) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	return a.inner.Chat(ctx, messages)
}

func (a *llmClientAdapter) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	return a.inner.ChatWithStructuredOutput(ctx, messages, schema)
}

func (a *llmClientAdapter) Close() error {
	return a.inner.Close()
}

func (a *llmClientAdapter) GetCapabilities() []TaskCapability {
	caps := a.inner.GetCapabilities()
	out := make([]TaskCapability, len(caps))
	for i, c := range caps {
		out[i] = TaskCapability(c)
	}
	return out
}

// ToLLMClient adapts a Client into llm.Client, the reverse of FromLLMClient.
// Useful for wrapping an llm.Client through nlp-side middleware (e.g.
// NewCircuitBreakerClient) while handing the result back to callers that
// only know about llm.Client.
func ToLLMClient(c Client) llm.Client {
	if c == nil {
		return nil
	}
	return &nlpClientAdapter{inner: c}
}

type nlpClientAdapter struct {
	inner Client
}

func (a *nlpClientAdapter) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	return a.inner.Chat(ctx, messages)
}

func (a *nlpClientAdapter) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	return a.inner.ChatWithStructuredOutput(ctx, messages, schema)
}

func (a *nlpClientAdapter) Close() error {
	return a.inner.Close()
}

func (a *nlpClientAdapter) GetCapabilities() []llm.TaskCapability {
	caps := a.inner.GetCapabilities()
	out := make([]llm.TaskCapability, len(caps))
	for i, c := range caps {
		out[i] = llm.TaskCapability(c)
	}
	return out
}
