package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/zepgraph/zepgraph/pkg/types"
)

var errBoom = errors.New("boom")

func TestGraphBoostComputesLogBoostFromEdgeCount(t *testing.T) {
	driver := NewMockGraphDriver()
	driver.SetNodeNeighbors("isolated", nil)
	driver.SetNodeNeighbors("hub", []types.Neighbor{
		{NodeUUID: "a", EdgeCount: 3},
		{NodeUUID: "b", EdgeCount: 2},
	})

	boosts, err := GraphBoost(context.Background(), driver, []string{"isolated", "hub"}, "group-1")
	if err != nil {
		t.Fatalf("GraphBoost returned error: %v", err)
	}

	if got := boosts["isolated"]; got != 1.0 {
		t.Errorf("isolated node boost = %v, want 1.0", got)
	}

	want := 1.0 + 0.1*math.Log1p(5)
	if got := boosts["hub"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("hub node boost = %v, want %v", got, want)
	}
}

func TestGraphBoostPropagatesDriverError(t *testing.T) {
	driver := NewMockGraphDriver()
	driver.SetError(errBoom)

	_, err := GraphBoost(context.Background(), driver, []string{"x"}, "group-1")
	if err == nil {
		t.Fatal("expected error from GraphBoost, got nil")
	}
}

func TestApplyGraphBoostReordersByBoostedScore(t *testing.T) {
	uuids := []string{"low-boost-high-score", "high-boost-low-score"}
	scores := []float64{1.0, 0.5}
	boosts := map[string]float64{
		"low-boost-high-score": 1.0,
		"high-boost-low-score": 3.0,
	}

	gotUUIDs, gotScores := ApplyGraphBoost(uuids, scores, boosts, 0.0)

	if len(gotUUIDs) != 2 || gotUUIDs[0] != "high-boost-low-score" {
		t.Fatalf("expected high-boost-low-score first, got %v", gotUUIDs)
	}
	if gotScores[0] != 1.5 {
		t.Errorf("boosted top score = %v, want 1.5", gotScores[0])
	}
}

func TestApplyGraphBoostFiltersBelowMinScore(t *testing.T) {
	uuids := []string{"keep", "drop"}
	scores := []float64{0.5, 0.05}
	boosts := map[string]float64{}

	gotUUIDs, _ := ApplyGraphBoost(uuids, scores, boosts, 0.1)

	if len(gotUUIDs) != 1 || gotUUIDs[0] != "keep" {
		t.Fatalf("expected only 'keep' to survive minScore filter, got %v", gotUUIDs)
	}
}

func TestApplyGraphBoostDefaultsUnboostedNodesToOne(t *testing.T) {
	uuids := []string{"unboosted"}
	scores := []float64{0.4}
	boosts := map[string]float64{}

	gotUUIDs, gotScores := ApplyGraphBoost(uuids, scores, boosts, 0.0)

	if len(gotUUIDs) != 1 || gotScores[0] != 0.4 {
		t.Errorf("unboosted node score = %v, want unchanged 0.4", gotScores[0])
	}
}
