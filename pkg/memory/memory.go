// Package memory implements the memory manager (C12): add_memory,
// get_memory, and prune_memories, following pkg/session.Manager's
// constructor-injection idiom and read-then-write update pattern.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zepgraph/zepgraph/pkg/driver"
	"github.com/zepgraph/zepgraph/pkg/embedder"
	"github.com/zepgraph/zepgraph/pkg/llm"
	"github.com/zepgraph/zepgraph/pkg/rdf"
	"github.com/zepgraph/zepgraph/pkg/rdf/mapper"
	"github.com/zepgraph/zepgraph/pkg/rdf/store"
	"github.com/zepgraph/zepgraph/pkg/types"
	"github.com/zepgraph/zepgraph/pkg/zerrors"
)

// extractionTimeout bounds add_memory's fact extraction step. The memory
// node itself is always persisted before extraction runs, so a timeout
// here never loses the memory; it only leaves facts empty.
const extractionTimeout = 30 * time.Second

// Manager wraps a driver.GraphDriver, an llm.Client, an embedder.Client, and
// the RDF fact store for memory lifecycle operations.
type Manager struct {
	driver   driver.GraphDriver
	llm      llm.Client
	embedder embedder.Client
	rdfStore *store.Store
	logger   *slog.Logger
}

// NewManager constructs a memory Manager. llm and embedder may be nil, in
// which case AddMemory skips fact extraction and/or embedding respectively.
func NewManager(graphDriver driver.GraphDriver, llmClient llm.Client, embedderClient embedder.Client, rdfStore *store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		driver:   graphDriver,
		llm:      llmClient,
		embedder: embedderClient,
		rdfStore: rdfStore,
		logger:   logger,
	}
}

// AddMemoryOptions are the optional fields add_memory accepts.
type AddMemoryOptions struct {
	UUID     string
	Name     string
	Metadata map[string]interface{}
}

// factExtraction is the structured-output schema the extraction prompt asks
// the language adapter to fill in.
type factExtraction struct {
	Facts []struct {
		Subject    string  `json:"subject"`
		Predicate  string  `json:"predicate"`
		Object     string  `json:"object"`
		Confidence float64 `json:"confidence"`
	} `json:"facts"`
}

// AddMemory persists a memory node of the given type, embedding its content
// when an embedder is configured, then — for episodic and semantic memories
// only — extracts facts under extractionTimeout and stores them as reified
// RDF triples in one atomic batch. Extraction failing or timing out does not
// fail the call: the memory node is already durable by the time extraction
// runs, so the memory persists with no facts attached.
func (m *Manager) AddMemory(ctx context.Context, groupID, content string, memType types.MemoryType, opts *AddMemoryOptions) (*types.Node, error) {
	if content == "" {
		return nil, zerrors.New(zerrors.Validation, "memory content cannot be empty")
	}
	if groupID == "" {
		return nil, zerrors.New(zerrors.Validation, "memory group_id cannot be empty")
	}
	if opts == nil {
		opts = &AddMemoryOptions{}
	}

	now := time.Now().UTC()
	id := opts.UUID
	if id == "" {
		id = uuid.NewString()
	}
	name := opts.Name
	if name == "" {
		name = id
	}

	var embedding []float32
	if m.embedder != nil {
		emb, err := m.embedder.EmbedSingle(ctx, content)
		if err != nil {
			m.logger.Warn("memory content embedding failed", "memory_id", id, "error", err)
		} else {
			embedding = emb
		}
	}

	node := &types.Node{
		Uuid:        id,
		Name:        name,
		Type:        types.EpisodicNodeType,
		EpisodeType: types.ConversationEpisodeType,
		MemoryType:  memType,
		Content:     content,
		Embedding:   embedding,
		GroupID:     groupID,
		Metadata:    opts.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
		ValidFrom:   now,
	}
	if err := m.driver.UpsertNode(ctx, node); err != nil {
		return nil, fmt.Errorf("add memory: persist node: %w", err)
	}

	if (memType == types.MemoryTypeEpisodic || memType == types.MemoryTypeSemantic) && m.llm != nil {
		facts, err := m.extractFacts(ctx, id, content, now)
		if err != nil {
			m.logger.Warn("memory fact extraction failed", "memory_id", id, "error", err)
		} else if len(facts) > 0 {
			if err := m.persistFacts(ctx, facts); err != nil {
				m.logger.Warn("memory fact persistence failed", "memory_id", id, "error", err)
			}
		}
	}

	return node, nil
}

// extractFacts runs structured-output fact extraction against the
// configured llm.Client, bounded by extractionTimeout regardless of the
// caller's own deadline.
func (m *Manager) extractFacts(ctx context.Context, memoryID, content string, validFrom time.Time) ([]*rdf.Fact, error) {
	extractCtx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	var extraction factExtraction
	resp, err := m.llm.ChatWithStructuredOutput(extractCtx, []types.Message{
		{Role: llm.RoleSystem, Content: "Extract factual subject-predicate-object statements from the text, as JSON {facts: [{subject, predicate, object, confidence}]}. Confidence is a float in [0,1]."},
		{Role: llm.RoleUser, Content: content},
	}, &extraction)
	if err != nil {
		if extractCtx.Err() != nil {
			return nil, zerrors.Wrap(zerrors.Extraction, "fact extraction timed out", extractCtx.Err())
		}
		return nil, zerrors.Wrap(zerrors.Extraction, "fact extraction request failed", err)
	}
	if jsonErr := json.Unmarshal([]byte(resp.Content), &extraction); jsonErr != nil {
		return nil, zerrors.Wrap(zerrors.Extraction, "fact extraction returned invalid JSON", jsonErr)
	}

	facts := make([]*rdf.Fact, 0, len(extraction.Facts))
	for _, f := range extraction.Facts {
		if f.Subject == "" || f.Predicate == "" || f.Object == "" {
			continue
		}
		facts = append(facts, &rdf.Fact{
			UUID:            uuid.NewString(),
			Subject:         f.Subject,
			Predicate:       f.Predicate,
			Object:          f.Object,
			Confidence:      f.Confidence,
			SourceMemoryIDs: []string{memoryID},
			ValidFrom:       validFrom,
		})
	}
	return facts, nil
}

// persistFacts maps every fact to its reified triples and writes them in a
// single InsertBatch call, so either all of a memory's facts land or none do.
func (m *Manager) persistFacts(ctx context.Context, facts []*rdf.Fact) error {
	if m.rdfStore == nil {
		return zerrors.New(zerrors.Config, "add memory: no RDF store configured for fact persistence")
	}
	var triples []rdf.Triple
	for _, f := range facts {
		triples = append(triples, mapper.FactToRDF(f)...)
	}
	m.rdfStore.InsertBatch(triples)
	return nil
}

// GetMemory retrieves a memory node, atomically (from the caller's
// perspective) incrementing its access count and bumping its last-accessed
// timestamp. The driver has no atomic increment primitive, so this is a
// read-then-write, same as session.Manager.AddMemoryToSession's last_active_at
// update.
func (m *Manager) GetMemory(ctx context.Context, memoryID, groupID string) (*types.Node, error) {
	node, err := m.driver.GetNode(ctx, memoryID, groupID)
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	if node == nil {
		return nil, zerrors.New(zerrors.NotFound, fmt.Sprintf("memory %q not found", memoryID))
	}

	now := time.Now().UTC()
	node.AccessCount++
	node.LastAccessedAt = &now
	if err := m.driver.UpsertNode(ctx, node); err != nil {
		return nil, fmt.Errorf("get memory: update access tracking: %w", err)
	}
	return node, nil
}

// PruneMemories keeps the keepRecent most-recently-created memories in
// groupID and detach-deletes the rest, returning the count removed.
// Nodes with no MemoryType set are left untouched: they are plain episodes,
// not memories under this manager's retention policy.
func (m *Manager) PruneMemories(ctx context.Context, groupID string, keepRecent int) (int, error) {
	if keepRecent < 0 {
		return 0, zerrors.New(zerrors.Validation, "keep_recent cannot be negative")
	}

	nodes, err := m.driver.GetNodesInTimeRange(ctx, time.Time{}, time.Now().UTC(), groupID)
	if err != nil {
		return 0, fmt.Errorf("prune memories: %w", err)
	}

	var memories []*types.Node
	for _, n := range nodes {
		if n.MemoryType != "" {
			memories = append(memories, n)
		}
	}
	sort.Slice(memories, func(i, j int) bool { return memories[i].CreatedAt.After(memories[j].CreatedAt) })

	if keepRecent >= len(memories) {
		return 0, nil
	}

	toPrune := memories[keepRecent:]
	pruned := 0
	for _, n := range toPrune {
		if err := m.driver.DeleteNode(ctx, n.Uuid, n.GroupID); err != nil {
			return pruned, fmt.Errorf("prune memories: delete %q: %w", n.Uuid, err)
		}
		pruned++
	}
	return pruned, nil
}
