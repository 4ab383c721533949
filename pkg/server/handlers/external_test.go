package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zepgraph/zepgraph"
	"github.com/zepgraph/zepgraph/pkg/server/dto"
	"github.com/zepgraph/zepgraph/pkg/types"
)

// fullStubEngine implements zepgraph.Engine, backing only the methods the
// external-interface handlers actually call; anything else panics if hit.
type fullStubEngine struct {
	episodes      []*types.Node
	clearedGroups []string
	clearErr      error
}

func (s *fullStubEngine) Add(ctx context.Context, episodes []types.Episode, options *zepgraph.AddEpisodeOptions) (*types.AddBulkEpisodeResults, error) {
	panic("not used")
}
func (s *fullStubEngine) AddEpisode(ctx context.Context, episode types.Episode, options *zepgraph.AddEpisodeOptions) (*types.AddEpisodeResults, error) {
	panic("not used")
}
func (s *fullStubEngine) Search(ctx context.Context, query string, config *types.SearchConfig) (*types.SearchResults, error) {
	panic("not used")
}
func (s *fullStubEngine) GetNode(ctx context.Context, nodeID string) (*types.Node, error) {
	panic("not used")
}
func (s *fullStubEngine) GetEdge(ctx context.Context, edgeID string) (*types.Edge, error) {
	panic("not used")
}
func (s *fullStubEngine) GetEpisodes(ctx context.Context, groupID string, limit int) ([]*types.Node, error) {
	return s.episodes, nil
}
func (s *fullStubEngine) ClearGraph(ctx context.Context, groupID string) error {
	s.clearedGroups = append(s.clearedGroups, groupID)
	return s.clearErr
}
func (s *fullStubEngine) CreateIndices(ctx context.Context) error { panic("not used") }
func (s *fullStubEngine) AddTriplet(ctx context.Context, sourceNode *types.Node, edge *types.Edge, targetNode *types.Node, createEmbeddings bool) (*types.AddTripletResults, error) {
	panic("not used")
}
func (s *fullStubEngine) RemoveEpisode(ctx context.Context, episodeUUID string) error {
	panic("not used")
}
func (s *fullStubEngine) GetNodesAndEdgesByEpisode(ctx context.Context, episodeUUID string) ([]*types.Node, []*types.Edge, error) {
	panic("not used")
}
func (s *fullStubEngine) Close(ctx context.Context) error { return nil }
func (s *fullStubEngine) UpdateCommunities(ctx context.Context, episodeUUID string, groupID string) ([]*types.Node, []*types.Edge, error) {
	panic("not used")
}

func withGroupID(req *http.Request, groupID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("group_id", groupID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestListEpisodesReturnsBareArray(t *testing.T) {
	eng := &fullStubEngine{episodes: []*types.Node{
		{Uuid: "ep-1", GroupID: "group-1", Content: "hello", CreatedAt: time.Now()},
	}}
	h := NewRetrieveHandler(eng)

	req := withGroupID(httptest.NewRequest(http.MethodGet, "/episodes/group-1", nil), "group-1")
	w := httptest.NewRecorder()

	h.ListEpisodes(w, req)

	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var episodes []map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&episodes); err != nil {
		t.Fatalf("expected a bare JSON array, got decode error: %v", err)
	}
	if len(episodes) != 1 || episodes[0]["uuid"] != "ep-1" {
		t.Errorf("unexpected episodes payload: %v", episodes)
	}
}

func TestDeleteGroupClearsOnlyNamedGroup(t *testing.T) {
	eng := &fullStubEngine{}
	h := NewIngestHandler(eng)

	req := withGroupID(httptest.NewRequest(http.MethodDelete, "/group/group-1", nil), "group-1")
	w := httptest.NewRecorder()

	h.DeleteGroup(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(eng.clearedGroups) != 1 || eng.clearedGroups[0] != "group-1" {
		t.Errorf("expected group-1 cleared, got %v", eng.clearedGroups)
	}
}

func TestMessageValidationAcceptsRoleType(t *testing.T) {
	m := dto.Message{RoleType: "user", Content: "hi"}
	if err := m.Validate(); err != nil {
		t.Errorf("expected role_type=user to validate, got %v", err)
	}
}

func TestMessageValidationRejectsUnknownRoleType(t *testing.T) {
	m := dto.Message{RoleType: "narrator", Content: "hi"}
	if err := m.Validate(); err == nil {
		t.Error("expected an error for an unrecognized role_type")
	}
}

func TestMessageValidationFallsBackToLegacyRole(t *testing.T) {
	m := dto.Message{Role: "assistant", Content: "hi"}
	if err := m.Validate(); err != nil {
		t.Errorf("expected legacy role=assistant to validate, got %v", err)
	}
}
