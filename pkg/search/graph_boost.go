package search

import (
	"context"
	"math"
	"sort"

	"github.com/zepgraph/zepgraph/pkg/driver"
)

// GraphBoost computes a per-node multiplier from local connectivity: nodes
// with more edges get a mild boost, following the same "favor
// well-connected nodes" intuition as NodeDistanceReranker but driven by the
// real neighbor count (driver.GetNodeNeighbors) instead of a fixed default
// distance. The formula is 1 + 0.1*ln(1+edgeCount), so an isolated node
// (edgeCount 0) gets a multiplier of exactly 1 and connectivity adds a
// diminishing bonus rather than compounding unboundedly.
func GraphBoost(ctx context.Context, d driver.GraphDriver, nodeUUIDs []string, groupID string) (map[string]float64, error) {
	boosts := make(map[string]float64, len(nodeUUIDs))
	for _, uuid := range nodeUUIDs {
		neighbors, err := d.GetNodeNeighbors(ctx, uuid, groupID)
		if err != nil {
			return nil, err
		}
		edgeCount := 0
		for _, n := range neighbors {
			edgeCount += n.EdgeCount
		}
		boosts[uuid] = 1.0 + 0.1*math.Log1p(float64(edgeCount))
	}
	return boosts, nil
}

// ApplyGraphBoost multiplies each score by its node's boost (1.0 if the
// node has no entry, i.e. no graph-boost information was computed for it),
// then re-sorts descending. minScore filters the result the same way the
// other rerankers in this package do.
func ApplyGraphBoost(uuids []string, scores []float64, boosts map[string]float64, minScore float64) ([]string, []float64) {
	type boosted struct {
		uuid  string
		score float64
	}
	combined := make([]boosted, 0, len(uuids))
	for i, uuid := range uuids {
		score := scores[i]
		if b, ok := boosts[uuid]; ok {
			score *= b
		}
		if score >= minScore {
			combined = append(combined, boosted{uuid: uuid, score: score})
		}
	}
	sort.Slice(combined, func(i, j int) bool { return combined[i].score > combined[j].score })

	resultUUIDs := make([]string, len(combined))
	resultScores := make([]float64, len(combined))
	for i, c := range combined {
		resultUUIDs[i] = c.uuid
		resultScores[i] = c.score
	}
	return resultUUIDs, resultScores
}
