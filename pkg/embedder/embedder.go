package embedder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zepgraph/zepgraph/pkg/nlp"
)

// Client is the embedding provider surface: batch and single-text
// embedding, the configured output dimensionality, capability reporting
// (mirroring llm.Client/nlp.Client's GetCapabilities), and resource cleanup.
type Client interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
	GetCapabilities() []nlp.TaskCapability
}

// Config configures an embedding client. BaseURL supports OpenAI-compatible
// services the same way nlp.Config does; Dimensions overrides the
// model-inferred default when set.
type Config struct {
	Model      string
	BaseURL    string
	Dimensions int
}

// defaultDimensions returns the well-known output size for OpenAI's
// embedding models, used when Config.Dimensions is unset.
func defaultDimensions(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	default:
		return 1536
	}
}

// OpenAIEmbedder implements Client against OpenAI's embeddings endpoint,
// following OpenAIClient's (pkg/nlp/openai.go) custom-BaseURL handling.
type OpenAIEmbedder struct {
	client     *openai.Client
	config     Config
	dimensions int
}

// NewOpenAIEmbedder creates a new OpenAI embedding client. An empty Model
// defaults to "text-embedding-3-small"; Config.Dimensions, when set,
// overrides the model's default output size.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	var client *openai.Client
	if config.BaseURL != "" {
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = config.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(apiKey)
	}

	if config.Model == "" {
		config.Model = "text-embedding-3-small"
	}

	dims := config.Dimensions
	if dims == 0 {
		dims = defaultDimensions(config.Model)
	}

	return &OpenAIEmbedder{
		client:     client,
		config:     config,
		dimensions: dims,
	}
}

// Embed generates embeddings for a batch of texts, sending them in
// sequential requests of at most 100 texts each.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts to embed")
	}

	const maxBatchSize = 100
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		req := openai.EmbeddingRequestStrings{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(e.config.Model),
		}
		resp, err := e.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("openai embeddings request failed: %w", err)
		}
		for _, d := range resp.Data {
			embeddings = append(embeddings, d.Embedding)
		}
	}
	return embeddings, nil
}

// EmbedSingle is a convenience wrapper over Embed for one text.
func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the configured (or model-inferred) embedding size.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the underlying openai.Client holds no resources to release.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

// GetCapabilities reports this client as an embedding provider.
func (e *OpenAIEmbedder) GetCapabilities() []nlp.TaskCapability {
	return []nlp.TaskCapability{nlp.TaskEmbedding}
}
