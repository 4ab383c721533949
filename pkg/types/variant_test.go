package types

import (
	"testing"
	"time"
)

func TestToNodeVariantRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	invalidAt := now.Add(time.Hour)

	t.Run("entity", func(t *testing.T) {
		n := &Node{
			Uuid: "e1", Name: "Ada Lovelace", Type: EntityNodeType, GroupID: "g1",
			EntityType: "person", Summary: "mathematician", CreatedAt: now,
		}
		v, err := ToNodeVariant(n)
		if err != nil {
			t.Fatalf("ToNodeVariant: %v", err)
		}
		entity, ok := v.(EntityNode)
		if !ok {
			t.Fatalf("expected EntityNode, got %T", v)
		}
		if entity.Name != "Ada Lovelace" || entity.EntityType != "person" {
			t.Errorf("unexpected entity fields: %+v", entity)
		}
		back := FromNodeVariant(entity)
		if back.Type != EntityNodeType || back.Uuid != "e1" {
			t.Errorf("round-trip mismatch: %+v", back)
		}
	})

	t.Run("episodic", func(t *testing.T) {
		n := &Node{
			Uuid: "ep1", Name: "msg-1", Type: EpisodicNodeType, GroupID: "g1",
			EpisodeType: ConversationEpisodeType, Content: "hello", ValidFrom: now, ValidTo: &invalidAt, CreatedAt: now,
		}
		v, err := ToNodeVariant(n)
		if err != nil {
			t.Fatalf("ToNodeVariant: %v", err)
		}
		episode, ok := v.(EpisodicNode)
		if !ok {
			t.Fatalf("expected EpisodicNode, got %T", v)
		}
		if episode.ValidAt != now || episode.InvalidAt == nil || !episode.InvalidAt.Equal(invalidAt) {
			t.Errorf("validity window not preserved: %+v", episode)
		}
		back := FromNodeVariant(episode)
		if back.Type != EpisodicNodeType || back.ValidTo == nil {
			t.Errorf("round-trip mismatch: %+v", back)
		}
	})

	t.Run("community", func(t *testing.T) {
		n := &Node{Uuid: "c1", Name: "cluster-1", Type: CommunityNodeType, GroupID: "g1", Level: 2, CreatedAt: now}
		v, err := ToNodeVariant(n)
		if err != nil {
			t.Fatalf("ToNodeVariant: %v", err)
		}
		community, ok := v.(CommunityNode)
		if !ok {
			t.Fatalf("expected CommunityNode, got %T", v)
		}
		if community.Level != 2 {
			t.Errorf("expected level 2, got %d", community.Level)
		}
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		if _, err := ToNodeVariant(&Node{Type: NodeType("bogus")}); err == nil {
			t.Error("expected error for unrecognized node type")
		}
	})
}

// TestMentionsEdgeValidityDerivesFromEpisode asserts the Open Question (a)
// decision: a Mentions edge stores no validity window of its own, so it can
// never drift from its anchoring episode's valid_at/invalid_at.
func TestMentionsEdgeValidityDerivesFromEpisode(t *testing.T) {
	t.Parallel()

	validAt := time.Now().UTC()
	invalidAt := validAt.Add(24 * time.Hour)
	episode := EpisodicNode{UUID: "ep1", ValidAt: validAt, InvalidAt: &invalidAt}
	mentions := MentionsEdge{UUID: "m1", EpisodeUUID: "ep1", EntityUUID: "e1"}

	gotValidFrom, gotValidUntil := mentions.EffectiveValidity(episode)
	if !gotValidFrom.Equal(validAt) {
		t.Errorf("expected ValidFrom %v, got %v", validAt, gotValidFrom)
	}
	if gotValidUntil == nil || !gotValidUntil.Equal(invalidAt) {
		t.Errorf("expected ValidUntil %v, got %v", invalidAt, gotValidUntil)
	}

	// Retracting the episode (setting InvalidAt) changes the edge's
	// effective validity without touching the edge itself.
	episode.InvalidAt = nil
	_, gotValidUntil = mentions.EffectiveValidity(episode)
	if gotValidUntil != nil {
		t.Errorf("expected nil ValidUntil after episode retraction cleared, got %v", gotValidUntil)
	}
}

func TestEdgeVariantRoundTrip(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	t.Run("relates_to", func(t *testing.T) {
		ee := &EntityEdge{
			BaseEdge: BaseEdge{Uuid: "r1", GroupID: "g1", SourceNodeID: "s1", TargetNodeID: "t1", CreatedAt: now},
			Name:     "WORKS_AT", Episodes: []string{"ep1"},
		}
		rv := ToEdgeVariant(ee)
		if rv.Name != "WORKS_AT" || rv.SourceUUID != "s1" || rv.TargetUUID != "t1" {
			t.Errorf("unexpected relates-to fields: %+v", rv)
		}
		back := FromEdgeVariant(rv)
		if back.Name != "WORKS_AT" || back.SourceNodeID != "s1" {
			t.Errorf("round-trip mismatch: %+v", back)
		}
	})

	t.Run("mentions", func(t *testing.T) {
		ep := &EpisodicEdge{BaseEdge: BaseEdge{Uuid: "m1", GroupID: "g1", SourceNodeID: "ep1", TargetNodeID: "e1", CreatedAt: now}}
		mv := ToMentionsVariant(ep)
		if mv.EpisodeUUID != "ep1" || mv.EntityUUID != "e1" {
			t.Errorf("unexpected mentions fields: %+v", mv)
		}
		back := FromMentionsVariant(mv)
		if back.SourceNodeID != "ep1" || back.TargetNodeID != "e1" {
			t.Errorf("round-trip mismatch: %+v", back)
		}
	})

	t.Run("has_member", func(t *testing.T) {
		ce := &CommunityEdge{
			BaseEdge: BaseEdge{Uuid: "h1", GroupID: "g1", SourceNodeID: "c1", TargetNodeID: "e1", CreatedAt: now},
			Metadata: map[string]interface{}{"name": "MEMBER", "description": "core member"},
		}
		hv := ToHasMemberVariant(ce)
		if hv.Name != "MEMBER" || hv.Description != "core member" {
			t.Errorf("unexpected has-member fields: %+v", hv)
		}
		back := FromHasMemberVariant(hv)
		if back.SourceNodeID != "c1" || back.TargetNodeID != "e1" {
			t.Errorf("round-trip mismatch: %+v", back)
		}
	})
}
