//go:build integration
// +build integration

package zepgraph_test

import (
	"context"
	"testing"
	"time"

	"github.com/zepgraph/zepgraph"
	"github.com/zepgraph/zepgraph/pkg/driver"
	"github.com/zepgraph/zepgraph/pkg/types"
	"github.com/stretchr/testify/assert"
)

// Integration tests require actual database connections and are marked with build tag
// Run with: go test -tags=integration

func TestPredicatoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// This test would require actual database setup
	t.Skip("Skip until actual database driver is implemented")

	// In a real integration test, you would:
	// 1. Set up a test database (Ladybug/Neo4j)
	// 2. Create real LLM and embedder clients
	// 3. Test full functionality

	// Example setup (would need real implementations):
	// driver, err := driver.NewLadybugDriver("./test_integration_db")
	// require.NoError(t, err)
	// defer driver.Close(ctx)

	// nlProcessor, err := llm.NewOpenAIClient("test-key", llm.Config{
	//     Model: "gpt-4o-mini",
	// })
	// require.NoError(t, err)
	// defer nlProcessor.Close()

	// embedder, err := embedder.NewOpenAIEmbedder("test-key", embedder.Config{
	//     Model: "text-embedding-ada-002",
	// })
	// require.NoError(t, err)
	// defer embedder.Close()

	// client := zepgraph.NewClient(driver, nlProcessor, embedder, &zepgraph.Config{
	//     GroupID: "test-integration",
	//     TimeZone: time.UTC,
	// })

	// Test search functionality
	// searchOpts := &types.SearchOptions{
	//     Filters: &types.SearchFilters{
	//         NodeLabels: []string{"Person", "City"},
	//         CreatedAt: []types.DateFilter{
	//             {Date: nil, Operator: types.ComparisonOperatorIsNull},
	//             {Date: time.Now(), Operator: types.ComparisonOperatorLessThan},
	//         },
	//     },
	// }

	// results, err := client.Search(ctx, "Who is Tania", searchOpts)
	// require.NoError(t, err)
	// assert.NotNil(t, results)
}

func TestNodeOperationsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Skip("Skip until actual database driver is implemented")

	// Test node creation, retrieval, and updates
	// This would test the full node lifecycle with a real database
}

func TestEdgeOperationsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Skip("Skip until actual database driver is implemented")

	// Test edge creation, retrieval, and updates
	// This would test the full edge lifecycle with a real database
}

func TestSearchIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Skip("Skip until actual database driver is implemented")

	// Test various search scenarios:
	// - Semantic search
	// - Keyword search
	// - Filtered search
	// - Combined search strategies
}

func TestBulkOperationsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Skip("Skip until actual database driver is implemented")

	// Test bulk operations with large datasets
	// This would verify performance and correctness at scale
}

// MockIntegrationDriver provides a more realistic mock for integration testing
type MockIntegrationDriver struct {
	nodes map[string]*types.Node
	edges map[string]*types.Edge
}

func NewMockIntegrationDriver() *MockIntegrationDriver {
	return &MockIntegrationDriver{
		nodes: make(map[string]*types.Node),
		edges: make(map[string]*types.Edge),
	}
}

func (m *MockIntegrationDriver) GetNode(ctx context.Context, nodeID, groupID string) (*types.Node, error) {
	if node, exists := m.nodes[nodeID]; exists {
		return node, nil
	}
	return nil, zepgraph.ErrNodeNotFound
}

func (m *MockIntegrationDriver) UpsertNode(ctx context.Context, node *types.Node) error {
	m.nodes[node.ID] = node
	return nil
}

func (m *MockIntegrationDriver) DeleteNode(ctx context.Context, nodeID, groupID string) error {
	delete(m.nodes, nodeID)
	return nil
}

func (m *MockIntegrationDriver) GetNodes(ctx context.Context, nodeIDs []string, groupID string) ([]*types.Node, error) {
	var nodes []*types.Node
	for _, id := range nodeIDs {
		if node, exists := m.nodes[id]; exists {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func (m *MockIntegrationDriver) GetEdge(ctx context.Context, edgeID, groupID string) (*types.Edge, error) {
	if edge, exists := m.edges[edgeID]; exists {
		return edge, nil
	}
	return nil, zepgraph.ErrEdgeNotFound
}

func (m *MockIntegrationDriver) UpsertEdge(ctx context.Context, edge *types.Edge) error {
	m.edges[edge.ID] = edge
	return nil
}

func (m *MockIntegrationDriver) DeleteEdge(ctx context.Context, edgeID, groupID string) error {
	delete(m.edges, edgeID)
	return nil
}

func (m *MockIntegrationDriver) GetEdges(ctx context.Context, edgeIDs []string, groupID string) ([]*types.Edge, error) {
	var edges []*types.Edge
	for _, id := range edgeIDs {
		if edge, exists := m.edges[id]; exists {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

func (m *MockIntegrationDriver) GetNeighbors(ctx context.Context, nodeID, groupID string, maxDistance int) ([]*types.Node, error) {
	return []*types.Node{}, nil
}

func (m *MockIntegrationDriver) GetRelatedNodes(ctx context.Context, nodeID, groupID string, edgeTypes []types.EdgeType) ([]*types.Node, error) {
	return []*types.Node{}, nil
}

func (m *MockIntegrationDriver) SearchNodesByEmbedding(ctx context.Context, embedding []float32, groupID string, limit int) ([]*types.Node, error) {
	return []*types.Node{}, nil
}

func (m *MockIntegrationDriver) SearchEdgesByEmbedding(ctx context.Context, embedding []float32, groupID string, limit int) ([]*types.Edge, error) {
	return []*types.Edge{}, nil
}

func (m *MockIntegrationDriver) UpsertNodes(ctx context.Context, nodes []*types.Node) error {
	for _, node := range nodes {
		m.nodes[node.ID] = node
	}
	return nil
}

func (m *MockIntegrationDriver) UpsertEdges(ctx context.Context, edges []*types.Edge) error {
	for _, edge := range edges {
		m.edges[edge.ID] = edge
	}
	return nil
}

func (m *MockIntegrationDriver) GetNodesInTimeRange(ctx context.Context, start, end time.Time, groupID string) ([]*types.Node, error) {
	return []*types.Node{}, nil
}

func (m *MockIntegrationDriver) GetEdgesInTimeRange(ctx context.Context, start, end time.Time, groupID string) ([]*types.Edge, error) {
	return []*types.Edge{}, nil
}

func (m *MockIntegrationDriver) GetCommunities(ctx context.Context, groupID string, level int) ([]*types.Node, error) {
	return []*types.Node{}, nil
}

func (m *MockIntegrationDriver) BuildCommunities(ctx context.Context, groupID string) error {
	return nil
}

func (m *MockIntegrationDriver) CreateIndices(ctx context.Context) error {
	return nil
}

func (m *MockIntegrationDriver) GetStats(ctx context.Context, groupID string) (*driver.GraphStats, error) {
	return &driver.GraphStats{
		NodeCount: int64(len(m.nodes)),
		EdgeCount: int64(len(m.edges)),
	}, nil
}

func (m *MockIntegrationDriver) SearchNodes(ctx context.Context, query, groupID string, options *driver.SearchOptions) ([]*types.Node, error) {
	return []*types.Node{}, nil
}

func (m *MockIntegrationDriver) SearchEdges(ctx context.Context, query, groupID string, options *driver.SearchOptions) ([]*types.Edge, error) {
	return []*types.Edge{}, nil
}

func (m *MockIntegrationDriver) SearchNodesByVector(ctx context.Context, vector []float32, groupID string, options *driver.VectorSearchOptions) ([]*types.Node, error) {
	return []*types.Node{}, nil
}

func (m *MockIntegrationDriver) SearchEdgesByVector(ctx context.Context, vector []float32, groupID string, options *driver.VectorSearchOptions) ([]*types.Edge, error) {
	return []*types.Edge{}, nil
}

func (m *MockIntegrationDriver) Close(ctx context.Context) error {
	return nil
}

func TestMockIntegrationDriver(t *testing.T) {
	ctx := context.Background()
	driver := NewMockIntegrationDriver()
	defer driver.Close(ctx)

	// Test node operations
	node := &types.Node{
		ID:      "test-node",
		Name:    "Test Node",
		Type:    types.EntityNodeType,
		GroupID: "test-group",
	}

	// Test create
	err := driver.UpsertNode(ctx, node)
	assert.NoError(t, err)

	// Test retrieve
	retrievedNode, err := driver.GetNode(ctx, node.ID, node.GroupID)
	assert.NoError(t, err)
	assert.Equal(t, node.ID, retrievedNode.ID)
	assert.Equal(t, node.Name, retrievedNode.Name)

	// Test edge operations
	edge := &types.Edge{
		BaseEdge: types.BaseEdge{
			ID:           "test-edge",
			GroupID:      "test-group",
			SourceNodeID: "source-id",
			TargetNodeID: "target-id",
		},
		Type:     types.EntityEdgeType,
		SourceID: "source-id",
		TargetID: "target-id",
	}

	// Test create
	err = driver.UpsertEdge(ctx, edge)
	assert.NoError(t, err)

	// Test retrieve
	retrievedEdge, err := driver.GetEdge(ctx, edge.ID, edge.GroupID)
	assert.NoError(t, err)
	assert.Equal(t, edge.ID, retrievedEdge.ID)
	assert.Equal(t, edge.Type, retrievedEdge.Type)

	// Test stats
	stats, err := driver.GetStats(ctx, "test-group")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.NodeCount)
	assert.Equal(t, int64(1), stats.EdgeCount)
}
