package search

import (
	"sort"
	"testing"
)

// TestRRFCommutative verifies the fuser is commutative over its input result
// sets: swapping the order of inputs to RRF must preserve the final ranking
// (rank constant and per-list positions are what determine each UUID's
// score, not which list arrived first).
func TestRRFCommutative(t *testing.T) {
	listA := []string{"n1", "n2", "n3"}
	listB := []string{"n2", "n4", "n1"}

	uuidsForward, scoresForward := RRF([][]string{listA, listB}, 60, 0)
	uuidsReversed, scoresReversed := RRF([][]string{listB, listA}, 60, 0)

	if len(uuidsForward) != len(uuidsReversed) {
		t.Fatalf("result count differs: forward=%d reversed=%d", len(uuidsForward), len(uuidsReversed))
	}
	for i := range uuidsForward {
		if uuidsForward[i] != uuidsReversed[i] {
			t.Errorf("rank %d differs after swapping input order: forward=%s reversed=%s", i, uuidsForward[i], uuidsReversed[i])
		}
		if scoresForward[i] != scoresReversed[i] {
			t.Errorf("score at rank %d differs after swapping input order: forward=%f reversed=%f", i, scoresForward[i], scoresReversed[i])
		}
	}
}

// TestRRFCommutativeManyLists extends the same check to more than two input
// lists, shuffled into a few different orders.
func TestRRFCommutativeManyLists(t *testing.T) {
	lists := [][]string{
		{"a", "b", "c"},
		{"c", "a", "d"},
		{"b", "d", "a"},
	}

	orderings := [][]int{
		{0, 1, 2},
		{2, 1, 0},
		{1, 2, 0},
	}

	var baseline []string
	for _, order := range orderings {
		permuted := make([][]string, len(order))
		for i, idx := range order {
			permuted[i] = lists[idx]
		}
		uuids, _ := RRF(permuted, 60, 0)
		if baseline == nil {
			baseline = uuids
			continue
		}
		if len(uuids) != len(baseline) {
			t.Fatalf("result count changed across orderings: got %d want %d", len(uuids), len(baseline))
		}
		for i := range uuids {
			if uuids[i] != baseline[i] {
				t.Errorf("ordering %v produced a different ranking at position %d: got %s want %s", order, i, uuids[i], baseline[i])
			}
		}
	}
}

// TestMMRLambdaOneReducesToSemanticTopK: at lambda=1.0 the diversity term
// drops out of the MMR formula entirely, so ranking must match sorting
// candidates by query-similarity alone.
func TestMMRLambdaOneReducesToSemanticTopK(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := map[string][]float32{
		"close":  {0.9, 0.1, 0},
		"medium": {0.5, 0.5, 0},
		"far":    {0, 0, 1},
	}

	uuids, _ := MaximalMarginalRelevance(query, candidates, 1.0, -1.0)

	type sim struct {
		uuid string
		s    float64
	}
	var sims []sim
	for uuid, vec := range candidates {
		sims = append(sims, sim{uuid, CalculateCosineSimilarity(normalizeL2(query), normalizeL2(vec))})
	}
	sort.Slice(sims, func(i, j int) bool { return sims[i].s > sims[j].s })

	if len(uuids) != len(sims) {
		t.Fatalf("expected %d results, got %d", len(sims), len(uuids))
	}
	for i := range sims {
		if uuids[i] != sims[i].uuid {
			t.Errorf("position %d: got %s, want %s (pure semantic ranking)", i, uuids[i], sims[i].uuid)
		}
	}
}

// TestMMRLambdaZeroPrefersDiversity: at lambda=0.0 MMR maximizes diversity —
// given a pool containing a near-duplicate pair and a dissimilar outlier, the
// outlier (lowest max-similarity to any other candidate) must rank first.
func TestMMRLambdaZeroPrefersDiversity(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := map[string][]float32{
		"dup1":    {1, 0, 0},
		"dup2":    {0.999, 0.001, 0},
		"distinct": {0, 1, 0},
	}

	uuids, _ := MaximalMarginalRelevance(query, candidates, 0.0, -1.0)
	if len(uuids) == 0 {
		t.Fatal("expected at least one result")
	}
	if uuids[0] != "distinct" {
		t.Errorf("expected the most diverse candidate first at lambda=0, got %s", uuids[0])
	}

	firstTwoSim := CalculateCosineSimilarity(normalizeL2(candidates[uuids[0]]), normalizeL2(candidates[uuids[1]]))
	if firstTwoSim > 0.999 {
		t.Errorf("first two MMR picks are near-duplicates (sim=%f), expected diversity at lambda=0", firstTwoSim)
	}
}
