package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/zepgraph/zepgraph/pkg/driver"
	"github.com/zepgraph/zepgraph/pkg/llm"
	"github.com/zepgraph/zepgraph/pkg/nlp"
	"github.com/zepgraph/zepgraph/pkg/rdf/store"
	"github.com/zepgraph/zepgraph/pkg/types"
)

// fakeDriver implements driver.GraphDriver, backing only the node
// operations Manager actually calls; the rest panic if exercised.
type fakeDriver struct {
	driver.GraphDriver
	nodes map[string]*types.Node
	err   error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{nodes: make(map[string]*types.Node)}
}

func (d *fakeDriver) GetNode(ctx context.Context, nodeID, groupID string) (*types.Node, error) {
	if d.err != nil {
		return nil, d.err
	}
	n, ok := d.nodes[nodeID]
	if !ok {
		return nil, nil
	}
	return n, nil
}

func (d *fakeDriver) UpsertNode(ctx context.Context, node *types.Node) error {
	if d.err != nil {
		return d.err
	}
	d.nodes[node.Uuid] = node
	return nil
}

func (d *fakeDriver) DeleteNode(ctx context.Context, nodeID, groupID string) error {
	if d.err != nil {
		return d.err
	}
	delete(d.nodes, nodeID)
	return nil
}

func (d *fakeDriver) GetNodesInTimeRange(ctx context.Context, start, end time.Time, groupID string) ([]*types.Node, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []*types.Node
	for _, n := range d.nodes {
		if groupID != "" && n.GroupID != groupID {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// fakeLLM always returns a fixed structured-output payload, or blocks past
// the caller's deadline when delay is set, to exercise extraction timeout.
type fakeLLM struct {
	responseJSON string
	err          error
	delay        time.Duration
}

func (f *fakeLLM) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	return &types.Response{Content: f.responseJSON}, f.err
}

func (f *fakeLLM) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if err := json.Unmarshal([]byte(f.responseJSON), schema); err != nil {
		return nil, err
	}
	return &types.Response{Content: f.responseJSON}, nil
}

func (f *fakeLLM) GetCapabilities() []llm.TaskCapability { return nil }
func (f *fakeLLM) Close() error                          { return nil }

// fakeEmbedder returns a fixed-size vector for any input.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}
func (fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}
func (fakeEmbedder) Dimensions() int                       { return 3 }
func (fakeEmbedder) Close() error                          { return nil }
func (fakeEmbedder) GetCapabilities() []nlp.TaskCapability { return []nlp.TaskCapability{nlp.TaskEmbedding} }

func newRDFStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New()
	if err != nil {
		t.Fatalf("store.New() failed: %v", err)
	}
	return s
}

func TestAddMemoryPersistsNodeAndExtractsFacts(t *testing.T) {
	d := newFakeDriver()
	l := &fakeLLM{responseJSON: `{"facts":[{"subject":"Alice","predicate":"likes","object":"coffee","confidence":0.9}]}`}
	s := newRDFStore(t)
	mgr := NewManager(d, l, fakeEmbedder{}, s, nil)

	node, err := mgr.AddMemory(context.Background(), "group-1", "Alice likes coffee.", types.MemoryTypeEpisodic, nil)
	if err != nil {
		t.Fatalf("AddMemory returned error: %v", err)
	}
	if node.MemoryType != types.MemoryTypeEpisodic {
		t.Errorf("node.MemoryType = %v, want episodic", node.MemoryType)
	}
	if len(node.Embedding) != 3 {
		t.Errorf("expected embedding to be set, got %v", node.Embedding)
	}
	if len(s.All()) == 0 {
		t.Error("expected facts to be persisted as RDF triples, got none")
	}
}

func TestAddMemorySkipsExtractionForProceduralType(t *testing.T) {
	d := newFakeDriver()
	l := &fakeLLM{responseJSON: `{"facts":[{"subject":"x","predicate":"y","object":"z","confidence":1}]}`}
	s := newRDFStore(t)
	mgr := NewManager(d, l, nil, s, nil)

	_, err := mgr.AddMemory(context.Background(), "group-1", "some procedure text", types.MemoryTypeProcedural, nil)
	if err != nil {
		t.Fatalf("AddMemory returned error: %v", err)
	}
	if len(s.All()) != 0 {
		t.Errorf("expected no facts for procedural memory type, got %d triples", len(s.All()))
	}
}

func TestAddMemorySurvivesExtractionTimeout(t *testing.T) {
	d := newFakeDriver()
	l := &fakeLLM{responseJSON: `{"facts":[]}`, delay: 50 * time.Millisecond}
	s := newRDFStore(t)
	mgr := NewManager(d, l, nil, s, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	node, err := mgr.AddMemory(ctx, "group-1", "slow extraction text", types.MemoryTypeSemantic, nil)
	if err != nil {
		t.Fatalf("AddMemory returned error despite extraction delay: %v", err)
	}
	if _, ok := d.nodes[node.Uuid]; !ok {
		t.Error("expected memory node to persist even though extraction timed out")
	}
}

func TestAddMemoryRejectsEmptyContent(t *testing.T) {
	mgr := NewManager(newFakeDriver(), nil, nil, nil, nil)
	if _, err := mgr.AddMemory(context.Background(), "group-1", "", types.MemoryTypeEpisodic, nil); err == nil {
		t.Fatal("expected error for empty content, got nil")
	}
}

func TestGetMemoryIncrementsAccessCount(t *testing.T) {
	d := newFakeDriver()
	mgr := NewManager(d, nil, nil, nil, nil)

	seed := &types.Node{Uuid: "mem-1", GroupID: "group-1", Content: "hello", MemoryType: types.MemoryTypeEpisodic, CreatedAt: time.Now()}
	d.nodes["mem-1"] = seed

	got, err := mgr.GetMemory(context.Background(), "mem-1", "group-1")
	if err != nil {
		t.Fatalf("GetMemory returned error: %v", err)
	}
	if got.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", got.AccessCount)
	}
	if got.LastAccessedAt == nil {
		t.Error("expected LastAccessedAt to be set")
	}

	got2, err := mgr.GetMemory(context.Background(), "mem-1", "group-1")
	if err != nil {
		t.Fatalf("second GetMemory returned error: %v", err)
	}
	if got2.AccessCount != 2 {
		t.Errorf("AccessCount after second get = %d, want 2", got2.AccessCount)
	}
}

func TestGetMemoryNotFound(t *testing.T) {
	mgr := NewManager(newFakeDriver(), nil, nil, nil, nil)
	_, err := mgr.GetMemory(context.Background(), "missing", "group-1")
	if err == nil {
		t.Fatal("expected not-found error, got nil")
	}
}

func TestPruneMemoriesKeepsRecentAndDropsRest(t *testing.T) {
	d := newFakeDriver()
	base := time.Now()
	for i := 0; i < 5; i++ {
		id := "mem-" + string(rune('a'+i))
		d.nodes[id] = &types.Node{
			Uuid:       id,
			GroupID:    "group-1",
			MemoryType: types.MemoryTypeEpisodic,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
	}
	// a non-memory episode should never be pruned
	d.nodes["episode-x"] = &types.Node{Uuid: "episode-x", GroupID: "group-1", CreatedAt: base}

	mgr := NewManager(d, nil, nil, nil, nil)
	pruned, err := mgr.PruneMemories(context.Background(), "group-1", 2)
	if err != nil {
		t.Fatalf("PruneMemories returned error: %v", err)
	}
	if pruned != 3 {
		t.Errorf("pruned = %d, want 3", pruned)
	}
	if len(d.nodes) != 3 {
		t.Errorf("remaining nodes = %d, want 3 (2 kept memories + 1 untouched episode)", len(d.nodes))
	}
	if _, ok := d.nodes["episode-x"]; !ok {
		t.Error("expected non-memory episode to survive pruning")
	}
}

func TestPruneMemoriesRejectsNegativeKeepRecent(t *testing.T) {
	mgr := NewManager(newFakeDriver(), nil, nil, nil, nil)
	if _, err := mgr.PruneMemories(context.Background(), "group-1", -1); err == nil {
		t.Fatal("expected error for negative keep_recent, got nil")
	}
}

var errBoom = errors.New("boom")

func TestGetMemoryPropagatesDriverError(t *testing.T) {
	d := newFakeDriver()
	d.err = errBoom
	mgr := NewManager(d, nil, nil, nil, nil)
	if _, err := mgr.GetMemory(context.Background(), "mem-1", "group-1"); err == nil {
		t.Fatal("expected error from driver, got nil")
	}
}
