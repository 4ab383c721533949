package types

import (
	"fmt"
	"time"
)

// NodeVariant is the tagged-union view of a graph node: exactly one of
// EntityNode, EpisodicNode, or CommunityNode, replacing the polymorphic
// Node-with-downcasts shape the flat types.Node struct carries for the
// labelled-property driver family. RDF/session/fact code, which has no
// legacy driver baggage, is built against this representation instead.
// Dispatch is by type switch, never by a Type/Kind discriminator field.
type NodeVariant interface {
	isNodeVariant()
}

// EntityNode is a durable participant: person, place, organization, concept.
// (name, group_id) is the dedup key — two EntityNodes sharing both must be
// merged by the caller rather than inserted as duplicates.
type EntityNode struct {
	UUID             string
	Name             string
	GroupID          string
	EntityType       string
	Summary          string
	SummaryEmbedding []float32
	FactIDs          []string
	Labels           []string
	CreatedAt        time.Time
}

func (EntityNode) isNodeVariant() {}

// EpisodicNode is a single ingestion event. Content is immutable after
// insertion; InvalidAt is the only field a retraction may set.
type EpisodicNode struct {
	UUID        string
	Name        string
	GroupID     string
	EpisodeType EpisodeType
	Content     string
	Embedding   []float32
	ValidAt     time.Time
	InvalidAt   *time.Time
	ReferenceID string
	CreatedAt   time.Time
}

func (EpisodicNode) isNodeVariant() {}

// CommunityNode is an aggregated cluster of entities. Level increases
// monotonically with aggregation depth; callers must not decrease it.
type CommunityNode struct {
	UUID             string
	Name             string
	GroupID          string
	Level            int
	Summary          string
	SummaryEmbedding []float32
	FactIDs          []string
	CreatedAt        time.Time
}

func (CommunityNode) isNodeVariant() {}

// ToNodeVariant converts the flat, driver-facing Node into its tagged-union
// view. Returns an error for a Type this package doesn't recognize, rather
// than silently picking one arm.
func ToNodeVariant(n *Node) (NodeVariant, error) {
	switch n.Type {
	case EntityNodeType:
		return EntityNode{
			UUID: n.Uuid, Name: n.Name, GroupID: n.GroupID,
			EntityType: n.EntityType, Summary: n.Summary,
			SummaryEmbedding: n.Embedding, FactIDs: n.SourceIDs,
			Labels: []string{"Entity"}, CreatedAt: n.CreatedAt,
		}, nil
	case EpisodicNodeType:
		return EpisodicNode{
			UUID: n.Uuid, Name: n.Name, GroupID: n.GroupID,
			EpisodeType: n.EpisodeType, Content: n.Content, Embedding: n.Embedding,
			ValidAt: n.ValidFrom, InvalidAt: n.ValidTo, CreatedAt: n.CreatedAt,
		}, nil
	case CommunityNodeType:
		return CommunityNode{
			UUID: n.Uuid, Name: n.Name, GroupID: n.GroupID,
			Level: n.Level, Summary: n.Summary, SummaryEmbedding: n.Embedding,
			FactIDs: n.SourceIDs, CreatedAt: n.CreatedAt,
		}, nil
	default:
		return nil, fmt.Errorf("unrecognized node type %q", n.Type)
	}
}

// FromNodeVariant converts a tagged-union node back into the flat Node the
// labelled-property drivers operate on. The "Entity"/"Episodic"/"Community"
// label is implied by Type, not stored as data.
func FromNodeVariant(v NodeVariant) *Node {
	switch n := v.(type) {
	case EntityNode:
		return &Node{
			Uuid: n.UUID, Name: n.Name, Type: EntityNodeType, GroupID: n.GroupID,
			EntityType: n.EntityType, Summary: n.Summary, Embedding: n.SummaryEmbedding,
			SourceIDs: n.FactIDs, CreatedAt: n.CreatedAt, UpdatedAt: n.CreatedAt,
			ValidFrom: n.CreatedAt,
		}
	case EpisodicNode:
		return &Node{
			Uuid: n.UUID, Name: n.Name, Type: EpisodicNodeType, GroupID: n.GroupID,
			EpisodeType: n.EpisodeType, Content: n.Content, Embedding: n.Embedding,
			ValidFrom: n.ValidAt, ValidTo: n.InvalidAt, CreatedAt: n.CreatedAt, UpdatedAt: n.CreatedAt,
		}
	case CommunityNode:
		return &Node{
			Uuid: n.UUID, Name: n.Name, Type: CommunityNodeType, GroupID: n.GroupID,
			Level: n.Level, Summary: n.Summary, Embedding: n.SummaryEmbedding,
			SourceIDs: n.FactIDs, CreatedAt: n.CreatedAt, UpdatedAt: n.CreatedAt,
			ValidFrom: n.CreatedAt,
		}
	default:
		return nil
	}
}

// EdgeVariant is the tagged-union view of a graph edge: exactly one of
// MentionsEdge, RelatesToEdge, or HasMemberEdge.
type EdgeVariant interface {
	isEdgeVariant()
}

// MentionsEdge asserts that an episode contains a mention of an entity. It
// carries no validity window of its own: per the decision recorded for this
// package's Open Question (a), a Mentions edge's valid/invalid window is
// always derived from the anchoring episode's ValidAt/InvalidAt, never
// stored independently, so the two can never drift apart.
type MentionsEdge struct {
	UUID        string
	GroupID     string
	EpisodeUUID string
	EntityUUID  string
	CreatedAt   time.Time
}

func (MentionsEdge) isEdgeVariant() {}

// EffectiveValidity derives a Mentions edge's validity window from its
// anchoring episode, since the edge stores none of its own.
func (m MentionsEdge) EffectiveValidity(episode EpisodicNode) (validFrom time.Time, validUntil *time.Time) {
	return episode.ValidAt, episode.InvalidAt
}

// RelatesToEdge is a directed relation between two entities. (SourceUUID,
// TargetUUID, Name) is the dedup key within a GroupID; a later assertion
// with a different InvalidAt supersedes the original rather than deleting
// it (ExpiredAt marks when the superseding happened; InvalidAt marks when
// the fact stopped being true in the world).
type RelatesToEdge struct {
	UUID       string
	GroupID    string
	SourceUUID string
	TargetUUID string
	Name       string
	FactIDs    []string
	Episodes   []string
	ValidAt    time.Time
	InvalidAt  *time.Time
	ExpiredAt  *time.Time
	CreatedAt  time.Time
}

func (RelatesToEdge) isEdgeVariant() {}

// HasMemberEdge asserts that an entity belongs to a community.
type HasMemberEdge struct {
	UUID          string
	GroupID       string
	CommunityUUID string
	EntityUUID    string
	Name          string
	Description   string
	FactIDs       []string
	CreatedAt     time.Time
}

func (HasMemberEdge) isEdgeVariant() {}

// ToEdgeVariant converts an EntityEdge (the flat, driver-facing
// relates-to representation) into its tagged-union view.
func ToEdgeVariant(e *EntityEdge) RelatesToEdge {
	var factIDs []string
	if raw, ok := e.Attributes["fact_ids"].([]string); ok {
		factIDs = raw
	}
	validAt := e.ValidFrom
	if e.ValidAt != nil {
		validAt = *e.ValidAt
	}
	return RelatesToEdge{
		UUID: e.Uuid, GroupID: e.GroupID, SourceUUID: e.SourceNodeID, TargetUUID: e.TargetNodeID,
		Name: e.Name, FactIDs: factIDs, Episodes: e.Episodes,
		ValidAt: validAt, InvalidAt: e.InvalidAt, ExpiredAt: e.ExpiredAt, CreatedAt: e.CreatedAt,
	}
}

// FromEdgeVariant converts a RelatesToEdge back into the EntityEdge the
// labelled-property EdgeStore operates on.
func FromEdgeVariant(r RelatesToEdge) *EntityEdge {
	e := &EntityEdge{
		BaseEdge: BaseEdge{
			Uuid: r.UUID, GroupID: r.GroupID, SourceNodeID: r.SourceUUID, TargetNodeID: r.TargetUUID,
			CreatedAt: r.CreatedAt,
		},
		Name: r.Name, Episodes: r.Episodes, ValidAt: &r.ValidAt, InvalidAt: r.InvalidAt, ExpiredAt: r.ExpiredAt,
	}
	if len(r.FactIDs) > 0 {
		e.Attributes = map[string]interface{}{"fact_ids": r.FactIDs}
	}
	e.syncFields()
	return e
}

// ToMentionsVariant converts an EpisodicEdge into its tagged-union view.
func ToMentionsVariant(e *EpisodicEdge) MentionsEdge {
	return MentionsEdge{
		UUID: e.Uuid, GroupID: e.GroupID, EpisodeUUID: e.SourceNodeID, EntityUUID: e.TargetNodeID,
		CreatedAt: e.CreatedAt,
	}
}

// FromMentionsVariant converts a MentionsEdge back into the EpisodicEdge the
// labelled-property EdgeStore operates on.
func FromMentionsVariant(m MentionsEdge) *EpisodicEdge {
	return &EpisodicEdge{BaseEdge: BaseEdge{
		Uuid: m.UUID, GroupID: m.GroupID, SourceNodeID: m.EpisodeUUID, TargetNodeID: m.EntityUUID,
		CreatedAt: m.CreatedAt,
	}}
}

// ToHasMemberVariant converts a CommunityEdge into its tagged-union view.
func ToHasMemberVariant(e *CommunityEdge) HasMemberEdge {
	h := HasMemberEdge{
		UUID: e.Uuid, GroupID: e.GroupID, CommunityUUID: e.SourceNodeID, EntityUUID: e.TargetNodeID,
		CreatedAt: e.CreatedAt,
	}
	if e.Metadata != nil {
		if name, ok := e.Metadata["name"].(string); ok {
			h.Name = name
		}
		if desc, ok := e.Metadata["description"].(string); ok {
			h.Description = desc
		}
	}
	return h
}

// FromHasMemberVariant converts a HasMemberEdge back into the CommunityEdge
// the labelled-property EdgeStore operates on.
func FromHasMemberVariant(h HasMemberEdge) *CommunityEdge {
	e := &CommunityEdge{BaseEdge: BaseEdge{
		Uuid: h.UUID, GroupID: h.GroupID, SourceNodeID: h.CommunityUUID, TargetNodeID: h.EntityUUID,
		CreatedAt: h.CreatedAt,
	}}
	if h.Name != "" || h.Description != "" {
		e.Metadata = map[string]interface{}{"name": h.Name, "description": h.Description}
	}
	return e
}
