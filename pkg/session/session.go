// Package session implements the session lifecycle (C11): creating and
// retrieving sessions, attaching memories, and generating range-bounded
// summaries, following pkg/community.Builder's constructor-injection idiom.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zepgraph/zepgraph/pkg/driver"
	"github.com/zepgraph/zepgraph/pkg/llm"
	"github.com/zepgraph/zepgraph/pkg/types"
	"github.com/zepgraph/zepgraph/pkg/zerrors"
)

// Session captures session_id, optional user_id, metadata, the
// created/last-active timestamps, an ordered set of memory ids, and its
// summaries so far.
type Session struct {
	SessionID    string                 `json:"session_id"`
	UserID       string                 `json:"user_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	LastActiveAt time.Time              `json:"last_active_at"`
	MemoryIDs    []string               `json:"memory_ids"`
	Summaries    []*Summary             `json:"summaries,omitempty"`
}

// Summary captures a generated session summary.
type Summary struct {
	UUID         string    `json:"uuid"`
	SessionID    string    `json:"session_id"`
	Summary      string    `json:"summary"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	MessageCount int       `json:"message_count"`
	Entities     []string  `json:"entities,omitempty"`
	Topics       []string  `json:"topics,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateSessionOptions are the optional fields create_session accepts.
type CreateSessionOptions struct {
	SessionID string
	UserID    string
	Metadata  map[string]interface{}
}

// SummaryOptions bound generate_session_summary's memory window.
type SummaryOptions struct {
	Start       *time.Time
	End         *time.Time
	MaxMessages int
}

// sessionNodeType is the labelled-property node label for a session record,
// persisted via the same driver.NodeStore surface episodic/entity nodes use.
const sessionNodeType types.NodeType = "session"
const summaryNodeType types.NodeType = "session_summary"
const hasMemoryEdgeType types.EdgeType = "HAS_MEMORY"
const hasSummaryEdgeType types.EdgeType = "HAS_SUMMARY"

// Manager wraps a driver.GraphDriver and an llm.Client for session
// lifecycle operations, mirroring community.Builder's constructor shape.
type Manager struct {
	driver driver.GraphDriver
	llm    llm.Client
	logger *slog.Logger
}

// NewManager constructs a session Manager.
func NewManager(graphDriver driver.GraphDriver, llmClient llm.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{driver: graphDriver, llm: llmClient, logger: logger}
}

// CreateSession persists a new session node, minting a uuid when SessionID
// is unset.
func (m *Manager) CreateSession(ctx context.Context, opts CreateSessionOptions) (*Session, error) {
	now := time.Now().UTC()
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	node := &types.Node{
		Uuid:      sessionID,
		Name:      sessionID,
		Type:      sessionNodeType,
		GroupID:   opts.UserID,
		Metadata:  opts.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
		ValidFrom: now,
	}
	if err := m.driver.UpsertNode(ctx, node); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Session{
		SessionID:    sessionID,
		UserID:       opts.UserID,
		Metadata:     opts.Metadata,
		CreatedAt:    now,
		LastActiveAt: now,
	}, nil
}

// GetSession retrieves a session and the memory ids attached to it.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	node, err := m.driver.GetNode(ctx, sessionID, "")
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if node == nil {
		return nil, zerrors.New(zerrors.NotFound, fmt.Sprintf("session %q not found", sessionID))
	}

	related, err := m.driver.GetRelatedNodes(ctx, sessionID, node.GroupID, []types.EdgeType{hasMemoryEdgeType})
	if err != nil {
		return nil, fmt.Errorf("get session memories: %w", err)
	}

	s := &Session{
		SessionID:    node.Uuid,
		UserID:       node.GroupID,
		Metadata:     node.Metadata,
		CreatedAt:    node.CreatedAt,
		LastActiveAt: node.UpdatedAt,
	}
	for _, n := range related {
		s.MemoryIDs = append(s.MemoryIDs, n.Uuid)
	}
	return s, nil
}

// AddMemoryToSession creates a has-memory relation between the session and
// the memory, and bumps last_active_at.
func (m *Manager) AddMemoryToSession(ctx context.Context, sessionID string, memory *types.Node) error {
	edge := &types.Edge{
		BaseEdge: types.BaseEdge{
			Uuid:         uuid.NewString(),
			GroupID:      memory.GroupID,
			SourceNodeID: sessionID,
			TargetNodeID: memory.Uuid,
			CreatedAt:    time.Now().UTC(),
		},
		Type: hasMemoryEdgeType,
	}
	if err := m.driver.UpsertEdge(ctx, edge); err != nil {
		return fmt.Errorf("attach memory to session: %w", err)
	}

	node, err := m.driver.GetNode(ctx, sessionID, "")
	if err != nil {
		return fmt.Errorf("load session for last_active_at update: %w", err)
	}
	if node == nil {
		return zerrors.New(zerrors.NotFound, fmt.Sprintf("session %q not found", sessionID))
	}
	node.UpdatedAt = time.Now().UTC()
	return m.driver.UpsertNode(ctx, node)
}

// GenerateSessionSummary fetches memories in [start, end] ordered by
// created_at ascending, summarizes their concatenation with the language
// adapter, separately extracts entities/topics under a declarative schema,
// and persists the resulting Summary.
func (m *Manager) GenerateSessionSummary(ctx context.Context, sessionID string, opts SummaryOptions) (*Summary, error) {
	if m.llm == nil {
		return nil, zerrors.New(zerrors.Config, "session summary requires an llm.Client")
	}

	start := time.Time{}
	if opts.Start != nil {
		start = *opts.Start
	}
	end := time.Now().UTC()
	if opts.End != nil {
		end = *opts.End
	}

	memories, err := m.driver.GetNodesInTimeRange(ctx, start, end, "")
	if err != nil {
		return nil, fmt.Errorf("generate session summary: %w", err)
	}
	sort.Slice(memories, func(i, j int) bool { return memories[i].CreatedAt.Before(memories[j].CreatedAt) })
	if opts.MaxMessages > 0 && len(memories) > opts.MaxMessages {
		memories = memories[:opts.MaxMessages]
	}
	if len(memories) == 0 {
		return nil, zerrors.New(zerrors.Validation, "no memories in the requested window")
	}

	var b strings.Builder
	for _, mem := range memories {
		fmt.Fprintf(&b, "[%s] %s\n", mem.CreatedAt.Format(time.RFC3339), mem.Content)
	}

	resp, err := m.llm.Chat(ctx, []types.Message{
		{Role: llm.RoleSystem, Content: "Summarize the following conversation concisely."},
		{Role: llm.RoleUser, Content: b.String()},
	})
	if err != nil {
		return nil, zerrors.Wrap(zerrors.Extraction, "session summary generation failed", err)
	}

	var entityTopics struct {
		Entities []string `json:"entities"`
		Topics   []string `json:"topics"`
	}
	extractResp, err := m.llm.ChatWithStructuredOutput(ctx, []types.Message{
		{Role: llm.RoleSystem, Content: "Extract the entities and topics discussed, as JSON {entities: [...], topics: [...]}."},
		{Role: llm.RoleUser, Content: b.String()},
	}, &entityTopics)
	if err != nil {
		m.logger.Warn("session summary entity/topic extraction failed", "session_id", sessionID, "error", err)
	} else if jsonErr := json.Unmarshal([]byte(extractResp.Content), &entityTopics); jsonErr != nil {
		m.logger.Warn("session summary entity/topic extraction returned invalid JSON", "session_id", sessionID, "error", jsonErr)
	}

	summary := &Summary{
		UUID:         uuid.NewString(),
		SessionID:    sessionID,
		Summary:      resp.Content,
		StartTime:    memories[0].CreatedAt,
		EndTime:      memories[len(memories)-1].CreatedAt,
		MessageCount: len(memories),
		Entities:     entityTopics.Entities,
		Topics:       entityTopics.Topics,
		CreatedAt:    time.Now().UTC(),
	}

	summaryNode := &types.Node{
		Uuid:      summary.UUID,
		Name:      summary.UUID,
		Type:      summaryNodeType,
		Summary:   summary.Summary,
		CreatedAt: summary.CreatedAt,
		UpdatedAt: summary.CreatedAt,
		ValidFrom: summary.StartTime,
		ValidTo:   &summary.EndTime,
		Metadata: map[string]interface{}{
			"message_count": summary.MessageCount,
			"entities":      summary.Entities,
			"topics":        summary.Topics,
		},
	}
	if err := m.driver.UpsertNode(ctx, summaryNode); err != nil {
		return nil, fmt.Errorf("persist session summary: %w", err)
	}
	summaryEdge := &types.Edge{
		BaseEdge: types.BaseEdge{
			Uuid:         uuid.NewString(),
			SourceNodeID: sessionID,
			TargetNodeID: summary.UUID,
			CreatedAt:    summary.CreatedAt,
		},
		Type: hasSummaryEdgeType,
	}
	if err := m.driver.UpsertEdge(ctx, summaryEdge); err != nil {
		return nil, fmt.Errorf("attach summary to session: %w", err)
	}

	return summary, nil
}

// DeleteSession detach-deletes the session, its memories, their facts, and
// its summaries in one mutation.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	node, err := m.driver.GetNode(ctx, sessionID, "")
	if err != nil {
		return fmt.Errorf("delete session: load session: %w", err)
	}
	if node == nil {
		return nil
	}

	related, err := m.driver.GetRelatedNodes(ctx, sessionID, node.GroupID, []types.EdgeType{hasMemoryEdgeType, hasSummaryEdgeType})
	if err != nil {
		return fmt.Errorf("delete session: load related nodes: %w", err)
	}
	for _, n := range related {
		if err := m.driver.DeleteNode(ctx, n.Uuid, n.GroupID); err != nil {
			return fmt.Errorf("delete session: remove related node %q: %w", n.Uuid, err)
		}
	}
	return m.driver.DeleteNode(ctx, sessionID, node.GroupID)
}
