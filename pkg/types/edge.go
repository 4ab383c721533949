package types

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zepgraph/zepgraph/pkg/rdf"
)

// GraphProvider represents the type of graph database provider.
// This is the canonical definition. pkg/driver exports this type via type alias
// (driver.GraphProvider = types.GraphProvider) for backward compatibility.
type GraphProvider string

const (
	GraphProviderNeo4j    GraphProvider = "neo4j"
	GraphProviderMemgraph GraphProvider = "memgraph"
	GraphProviderFalkorDB GraphProvider = "falkordb"
	GraphProviderLadybug  GraphProvider = "ladybug"
	GraphProviderNeptune  GraphProvider = "neptune"
)

// EdgeOperations provides methods for edge-related database operations
type EdgeOperations interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (interface{}, interface{}, interface{}, error)
	Provider() GraphProvider
	GetAossClient() interface{}
}

// BaseEdge holds the fields every edge shape (episodic, entity, community)
// shares: identity, endpoints, and creation time.
type BaseEdge struct {
	Uuid         string    `json:"uuid"`
	GroupID      string    `json:"group_id"`
	SourceNodeID string    `json:"source_node_uuid"`
	TargetNodeID string    `json:"target_node_uuid"`
	CreatedAt    time.Time `json:"created_at"`

	// Metadata and common fields
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// EdgeInterface is the shape a driver needs to persist and identify any edge.
type EdgeInterface interface {
	Save(ctx context.Context, driver EdgeOperations) error
	GetUUID() string
	GetGroupID() string
	GetSourceNodeUUID() string
	GetTargetNodeUUID() string
	GetCreatedAt() time.Time
}

// Implement EdgeInterface for BaseEdge
func (e *BaseEdge) GetUUID() string           { return e.Uuid }
func (e *BaseEdge) GetGroupID() string        { return e.GroupID }
func (e *BaseEdge) GetSourceNodeUUID() string { return e.SourceNodeID }
func (e *BaseEdge) GetTargetNodeUUID() string { return e.TargetNodeID }
func (e *BaseEdge) GetCreatedAt() time.Time   { return e.CreatedAt }

// Delete removes the edge's relationship row(s). Ladybug's columnar schema
// models Entity-Entity edges as an intermediate RelatesToNode_ row rather
// than a native relationship, so it needs a second statement the
// relationship-native providers don't.
func (e *BaseEdge) Delete(ctx context.Context, driver EdgeOperations) error {
	if driver.Provider() == GraphProviderLadybug {
		_, _, _, err := driver.ExecuteQuery(ctx, `
			MATCH (n)-[e:MENTIONS|HAS_MEMBER {uuid: $uuid}]->(m)
			DELETE e
		`, map[string]interface{}{
			"uuid": e.Uuid,
		})
		if err != nil {
			return err
		}

		_, _, _, err = driver.ExecuteQuery(ctx, `
			MATCH (e:RelatesToNode_ {uuid: $uuid})
			DETACH DELETE e
		`, map[string]interface{}{
			"uuid": e.Uuid,
		})
		return err
	} else {
		_, _, _, err := driver.ExecuteQuery(ctx, `
			MATCH (n)-[e:MENTIONS|RELATES_TO|HAS_MEMBER {uuid: $uuid}]->(m)
			DELETE e
		`, map[string]interface{}{
			"uuid": e.Uuid,
		})
		return err
	}
}

// DeleteEdgesByUUIDs batch-deletes edges by UUID across every relationship
// kind this graph schema uses.
func DeleteEdgesByUUIDs(ctx context.Context, driver EdgeOperations, uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}

	if driver.Provider() == GraphProviderLadybug {
		_, _, _, err := driver.ExecuteQuery(ctx, `
			MATCH (n)-[e:MENTIONS|HAS_MEMBER]->(m)
			WHERE e.uuid IN $uuids
			DELETE e
		`, map[string]interface{}{
			"uuids": uuids,
		})
		if err != nil {
			return err
		}

		_, _, _, err = driver.ExecuteQuery(ctx, `
			MATCH (e:RelatesToNode_)
			WHERE e.uuid IN $uuids
			DETACH DELETE e
		`, map[string]interface{}{
			"uuids": uuids,
		})
		return err
	} else {
		_, _, _, err := driver.ExecuteQuery(ctx, `
			MATCH (n)-[e:MENTIONS|RELATES_TO|HAS_MEMBER]->(m)
			WHERE e.uuid IN $uuids
			DELETE e
		`, map[string]interface{}{
			"uuids": uuids,
		})
		return err
	}
}

// EpisodicEdge connects an episode to an entity it mentions.
type EpisodicEdge struct {
	BaseEdge
}

// Save persists the edge.
func (e *EpisodicEdge) Save(ctx context.Context, driver EdgeOperations) error {
	_, _, _, err := driver.ExecuteQuery(ctx, "EPISODIC_EDGE_SAVE_QUERY", map[string]interface{}{
		"episode_uuid": e.SourceNodeID,
		"entity_uuid":  e.TargetNodeID,
		"uuid":         e.Uuid,
		"group_id":     e.GroupID,
		"created_at":   e.CreatedAt,
	})
	return err
}

// GetEpisodicEdgeByUUID loads a single MENTIONS edge.
func GetEpisodicEdgeByUUID(ctx context.Context, driver EdgeOperations, uuid string) (*EpisodicEdge, error) {
	records, _, _, err := driver.ExecuteQuery(ctx, `
		MATCH (n:Episodic)-[e:MENTIONS {uuid: $uuid}]->(m:Entity)
		RETURN e.uuid AS uuid, e.group_id AS group_id, 
		       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid,
		       e.created_at AS created_at
	`, map[string]interface{}{
		"uuid": uuid,
	})
	if err != nil {
		return nil, err
	}

	recordList, ok := records.([]map[string]interface{})
	if !ok || len(recordList) == 0 {
		return nil, fmt.Errorf("episodic edge with UUID %s not found", uuid)
	}

	record := recordList[0]
	return &EpisodicEdge{
		BaseEdge: BaseEdge{
			Uuid:         record["uuid"].(string),
			GroupID:      record["group_id"].(string),
			SourceNodeID: record["source_node_uuid"].(string),
			TargetNodeID: record["target_node_uuid"].(string),
			CreatedAt:    record["created_at"].(time.Time),
		},
	}, nil
}

// GetEpisodicEdgesByUUIDs batch-loads MENTIONS edges.
func GetEpisodicEdgesByUUIDs(ctx context.Context, driver EdgeOperations, uuids []string) ([]*EpisodicEdge, error) {
	if len(uuids) == 0 {
		return []*EpisodicEdge{}, nil
	}

	records, _, _, err := driver.ExecuteQuery(ctx, `
		MATCH (n:Episodic)-[e:MENTIONS]->(m:Entity)
		WHERE e.uuid IN $uuids
		RETURN e.uuid AS uuid, e.group_id AS group_id,
		       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid,
		       e.created_at AS created_at
	`, map[string]interface{}{
		"uuids": uuids,
	})
	if err != nil {
		return nil, err
	}

	var edges []*EpisodicEdge
	if recordList, ok := records.([]map[string]interface{}); ok {
		for _, record := range recordList {
			edge := &EpisodicEdge{
				BaseEdge: BaseEdge{
					Uuid:         record["uuid"].(string),
					GroupID:      record["group_id"].(string),
					SourceNodeID: record["source_node_uuid"].(string),
					TargetNodeID: record["target_node_uuid"].(string),
					CreatedAt:    record["created_at"].(time.Time),
				},
			}
			edges = append(edges, edge)
		}
	}

	return edges, nil
}

// EntityEdge is a RELATES_TO relationship between two entities: the graph
// form of a reified rdf.Fact (see ToFact/IsLive below).
type EntityEdge struct {
	BaseEdge

	// EntityEdge-specific fields: Fact is the natural-language statement this
	// edge encodes, Episodes the source episode UUIDs it was extracted from.
	Name          string                 `json:"name"`
	Fact          string                 `json:"fact"`
	FactEmbedding []float32              `json:"fact_embedding"`
	Episodes      []string               `json:"episodes"`
	ExpiredAt     *time.Time             `json:"expired_at,omitempty"`
	ValidAt       *time.Time             `json:"valid_at,omitempty"`
	InvalidAt     *time.Time             `json:"invalid_at,omitempty"`
	Attributes    map[string]interface{} `json:"attributes"`

	// Backward compatibility fields (from old Go Edge type)
	Type      EdgeType   `json:"type"`
	SourceID  string     `json:"source_id"` // alias for SourceNodeID uuid
	TargetID  string     `json:"target_id"` // alias for TargetNodeID uuid
	UpdatedAt time.Time  `json:"updated_at"`
	Summary   string     `json:"summary,omitempty"` // alias for Fact
	Strength  float64    `json:"strength,omitempty"`
	Embedding []float32  `json:"embedding,omitempty"` // general embedding field
	ValidFrom time.Time  `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
	SourceIDs []string   `json:"source_ids,omitempty"`
}

// EdgeType represents the type of an edge for backward compatibility
type EdgeType string

const (
	EntityEdgeType    EdgeType = "entity"
	EpisodicEdgeType  EdgeType = "episodic"
	CommunityEdgeType EdgeType = "community"
	SourceEdgeType    EdgeType = "source"
)

// Sync fields to maintain backward compatibility
func (e *EntityEdge) syncFields() {
	e.SourceID = e.SourceNodeID
	e.TargetID = e.TargetNodeID
	e.Summary = e.Fact
	if e.ValidAt != nil {
		e.ValidFrom = *e.ValidAt
	}
	if e.InvalidAt != nil {
		e.ValidTo = e.InvalidAt
	}
	e.Type = EntityEdgeType
}

// UpdateFromCompat updates the canonical fields from backward compatibility fields
func (e *EntityEdge) updateFromCompat() {
	if e.SourceID != "" {
		e.SourceNodeID = e.SourceID
	}
	if e.TargetID != "" {
		e.TargetNodeID = e.TargetID
	}
	if e.Summary != "" {
		e.Fact = e.Summary
	}
	if !e.ValidFrom.IsZero() {
		e.ValidAt = &e.ValidFrom
	}
	if e.ValidTo != nil {
		e.InvalidAt = e.ValidTo
	}
}

// embeddingClient is the subset of embedder.Client GenerateEmbedding needs;
// declared locally so pkg/types doesn't import pkg/embedder just for one
// method signature.
type embeddingClient interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// GenerateEmbedding populates FactEmbedding from the edge's Fact text,
// stripping newlines the way search's query-embedding path does so a fact
// embeds the same as an equivalent single-line query would.
func (e *EntityEdge) GenerateEmbedding(ctx context.Context, embedder embeddingClient) error {
	text := strings.ReplaceAll(e.Fact, "\n", " ")
	vec, err := embedder.EmbedSingle(ctx, text)
	if err != nil {
		return fmt.Errorf("embed fact %q: %w", e.Uuid, err)
	}
	e.FactEmbedding = vec
	return nil
}

// IsLive reports whether the edge's underlying fact holds at instant t,
// mirroring rdf.Fact.IsLive: valid_at <= t < (invalid_at or expired_at or
// +inf). An edge with no ValidAt is treated as always having been live,
// matching edges ingested before temporal tracking was added.
func (e *EntityEdge) IsLive(t time.Time) bool {
	if e.ValidAt != nil && e.ValidAt.After(t) {
		return false
	}
	if e.InvalidAt != nil && !e.InvalidAt.After(t) {
		return false
	}
	if e.ExpiredAt != nil && !e.ExpiredAt.After(t) {
		return false
	}
	return true
}

// ToFact reifies the edge as an rdf.Fact, the form pkg/rdf/mapper and
// pkg/ontology operate on. Strength carries over as Confidence; a zero
// Strength (never set) maps to full confidence rather than zero, since most
// edges are extracted without an explicit confidence score.
func (e *EntityEdge) ToFact() *rdf.Fact {
	confidence := e.Strength
	if confidence == 0 {
		confidence = 1.0
	}
	validFrom := e.CreatedAt
	if e.ValidAt != nil {
		validFrom = *e.ValidAt
	}
	validUntil := e.InvalidAt
	if validUntil == nil {
		validUntil = e.ExpiredAt
	}
	return &rdf.Fact{
		UUID:            e.Uuid,
		Subject:         e.SourceNodeID,
		Predicate:       e.Name,
		Object:          e.TargetNodeID,
		Confidence:      confidence,
		SourceMemoryIDs: e.Episodes,
		ValidFrom:       validFrom,
		ValidUntil:      validUntil,
		Metadata:        e.Attributes,
	}
}

// NewEntityEdge creates a new EntityEdge with backward compatibility
func NewEntityEdge(id, sourceID, targetID, groupID, name string, edgeType EdgeType) *EntityEdge {
	now := time.Now()
	edge := &EntityEdge{
		BaseEdge: BaseEdge{
			Uuid:         id,
			GroupID:      groupID,
			SourceNodeID: sourceID,
			TargetNodeID: targetID,
			CreatedAt:    now,
		},
		Type:     edgeType,
		SourceID: sourceID,
		TargetID: targetID,
		Name:     name,
		Summary:  name,
		Fact:     name,
	}
	return edge
}

// Save persists the edge; Ladybug stores Attributes as a JSON column
// rather than native properties, so it needs its own query shape.
func (e *EntityEdge) Save(ctx context.Context, driver EdgeOperations) error {
	edgeData := map[string]interface{}{
		"source_uuid":    e.SourceNodeID,
		"target_uuid":    e.TargetNodeID,
		"uuid":           e.Uuid,
		"name":           e.Name,
		"group_id":       e.GroupID,
		"fact":           e.Fact,
		"fact_embedding": e.FactEmbedding,
		"episodes":       e.Episodes,
		"created_at":     e.CreatedAt,
		"expired_at":     e.ExpiredAt,
		"valid_at":       e.ValidAt,
		"invalid_at":     e.InvalidAt,
	}

	if driver.Provider() == GraphProviderLadybug {
		attributesJSON, _ := json.Marshal(e.Attributes)
		edgeData["attributes"] = string(attributesJSON)

		_, _, _, err := driver.ExecuteQuery(ctx, "ENTITY_EDGE_SAVE_QUERY_ladybug", edgeData)
		return err
	} else {
		for k, v := range e.Attributes {
			edgeData[k] = v
		}

		// TODO: Add AOSS client support if needed
		// if driver.GetAossClient() != nil { ... }

		_, _, _, err := driver.ExecuteQuery(ctx, "ENTITY_EDGE_SAVE_QUERY", map[string]interface{}{
			"edge_data": edgeData,
		})
		return err
	}
}

// GetEntityEdgeByUUID loads a single RELATES_TO edge; Ladybug stores it as
// an intermediate RelatesToNode_ rather than a native relationship.
func GetEntityEdgeByUUID(ctx context.Context, driver EdgeOperations, uuid string) (*EntityEdge, error) {
	var query string
	if driver.Provider() == GraphProviderLadybug {
		query = `
			MATCH (n:Entity)-[:RELATES_TO]->(e:RelatesToNode_ {uuid: $uuid})-[:RELATES_TO]->(m:Entity)
			RETURN e.uuid AS uuid, e.name AS name, e.fact AS fact, e.group_id AS group_id,
			       e.episodes AS episodes, e.created_at AS created_at, e.expired_at AS expired_at,
			       e.valid_at AS valid_at, e.invalid_at AS invalid_at, e.attributes AS attributes,
			       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid
		`
	} else {
		query = `
			MATCH (n:Entity)-[e:RELATES_TO {uuid: $uuid}]->(m:Entity)
			RETURN e.uuid AS uuid, e.name AS name, e.fact AS fact, e.group_id AS group_id,
			       e.episodes AS episodes, e.created_at AS created_at, e.expired_at AS expired_at,
			       e.valid_at AS valid_at, e.invalid_at AS invalid_at, e AS attributes,
			       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid
		`
	}

	records, _, _, err := driver.ExecuteQuery(ctx, query, map[string]interface{}{
		"uuid": uuid,
	})
	if err != nil {
		return nil, err
	}

	recordList, ok := records.([]map[string]interface{})
	if !ok || len(recordList) == 0 {
		return nil, fmt.Errorf("entity edge with UUID %s not found", uuid)
	}

	return buildEntityEdgeFromRecord(recordList[0], driver.Provider()), nil
}

// GetEntityEdgesByUUIDs batch-loads RELATES_TO edges.
func GetEntityEdgesByUUIDs(ctx context.Context, driver EdgeOperations, uuids []string) ([]*EntityEdge, error) {
	if len(uuids) == 0 {
		return []*EntityEdge{}, nil
	}

	var query string
	if driver.Provider() == GraphProviderLadybug {
		query = `
			MATCH (n:Entity)-[:RELATES_TO]->(e:RelatesToNode_)-[:RELATES_TO]->(m:Entity)
			WHERE e.uuid IN $uuids
			RETURN e.uuid AS uuid, e.name AS name, e.fact AS fact, e.group_id AS group_id,
			       e.episodes AS episodes, e.created_at AS created_at, e.expired_at AS expired_at,
			       e.valid_at AS valid_at, e.invalid_at AS invalid_at, e.attributes AS attributes,
			       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid
		`
	} else {
		query = `
			MATCH (n:Entity)-[e:RELATES_TO]->(m:Entity)
			WHERE e.uuid IN $uuids
			RETURN e.uuid AS uuid, e.name AS name, e.fact AS fact, e.group_id AS group_id,
			       e.episodes AS episodes, e.created_at AS created_at, e.expired_at AS expired_at,
			       e.valid_at AS valid_at, e.invalid_at AS invalid_at, e AS attributes,
			       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid
		`
	}

	records, _, _, err := driver.ExecuteQuery(ctx, query, map[string]interface{}{
		"uuids": uuids,
	})
	if err != nil {
		return nil, err
	}

	var edges []*EntityEdge
	if recordList, ok := records.([]map[string]interface{}); ok {
		for _, record := range recordList {
			edge := buildEntityEdgeFromRecord(record, driver.Provider())
			edges = append(edges, edge)
		}
	}

	return edges, nil
}

// GetEntityEdgesBetweenNodes loads every RELATES_TO edge directly
// connecting two entities.
func GetEntityEdgesBetweenNodes(ctx context.Context, driver EdgeOperations, sourceNodeUUID, targetNodeUUID string) ([]*EntityEdge, error) {
	var query string
	if driver.Provider() == GraphProviderLadybug {
		query = `
			MATCH (n:Entity {uuid: $source_node_uuid})
			      -[:RELATES_TO]->(e:RelatesToNode_)
			      -[:RELATES_TO]->(m:Entity {uuid: $target_node_uuid})
			RETURN e.uuid AS uuid, e.name AS name, e.fact AS fact, e.group_id AS group_id,
			       e.episodes AS episodes, e.created_at AS created_at, e.expired_at AS expired_at,
			       e.valid_at AS valid_at, e.invalid_at AS invalid_at, e.attributes AS attributes,
			       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid
		`
	} else {
		query = `
			MATCH (n:Entity {uuid: $source_node_uuid})-[e:RELATES_TO]->(m:Entity {uuid: $target_node_uuid})
			RETURN e.uuid AS uuid, e.name AS name, e.fact AS fact, e.group_id AS group_id,
			       e.episodes AS episodes, e.created_at AS created_at, e.expired_at AS expired_at,
			       e.valid_at AS valid_at, e.invalid_at AS invalid_at, e AS attributes,
			       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid
		`
	}

	records, _, _, err := driver.ExecuteQuery(ctx, query, map[string]interface{}{
		"source_node_uuid": sourceNodeUUID,
		"target_node_uuid": targetNodeUUID,
	})
	if err != nil {
		return nil, err
	}

	var edges []*EntityEdge
	if recordList, ok := records.([]map[string]interface{}); ok {
		for _, record := range recordList {
			edge := buildEntityEdgeFromRecord(record, driver.Provider())
			edges = append(edges, edge)
		}
	}

	return edges, nil
}

// CommunityEdge connects a detected community to one of its member nodes.
type CommunityEdge struct {
	BaseEdge
}

// Save persists the edge.
func (e *CommunityEdge) Save(ctx context.Context, driver EdgeOperations) error {
	_, _, _, err := driver.ExecuteQuery(ctx, "COMMUNITY_EDGE_SAVE_QUERY", map[string]interface{}{
		"community_uuid": e.SourceNodeID,
		"entity_uuid":    e.TargetNodeID,
		"uuid":           e.Uuid,
		"group_id":       e.GroupID,
		"created_at":     e.CreatedAt,
	})
	return err
}

// GetCommunityEdgeByUUID loads a single HAS_MEMBER edge.
func GetCommunityEdgeByUUID(ctx context.Context, driver EdgeOperations, uuid string) (*CommunityEdge, error) {
	records, _, _, err := driver.ExecuteQuery(ctx, `
		MATCH (n:Community)-[e:HAS_MEMBER {uuid: $uuid}]->(m)
		RETURN e.uuid AS uuid, e.group_id AS group_id,
		       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid,
		       e.created_at AS created_at
	`, map[string]interface{}{
		"uuid": uuid,
	})
	if err != nil {
		return nil, err
	}

	recordList, ok := records.([]map[string]interface{})
	if !ok || len(recordList) == 0 {
		return nil, fmt.Errorf("community edge with UUID %s not found", uuid)
	}

	record := recordList[0]
	return &CommunityEdge{
		BaseEdge: BaseEdge{
			Uuid:         record["uuid"].(string),
			GroupID:      record["group_id"].(string),
			SourceNodeID: record["source_node_uuid"].(string),
			TargetNodeID: record["target_node_uuid"].(string),
			CreatedAt:    record["created_at"].(time.Time),
		},
	}, nil
}

// GetCommunityEdgesByUUIDs batch-loads HAS_MEMBER edges.
func GetCommunityEdgesByUUIDs(ctx context.Context, driver EdgeOperations, uuids []string) ([]*CommunityEdge, error) {
	if len(uuids) == 0 {
		return []*CommunityEdge{}, nil
	}

	records, _, _, err := driver.ExecuteQuery(ctx, `
		MATCH (n:Community)-[e:HAS_MEMBER]->(m)
		WHERE e.uuid IN $uuids
		RETURN e.uuid AS uuid, e.group_id AS group_id,
		       n.uuid AS source_node_uuid, m.uuid AS target_node_uuid,
		       e.created_at AS created_at
	`, map[string]interface{}{
		"uuids": uuids,
	})
	if err != nil {
		return nil, err
	}

	var edges []*CommunityEdge
	if recordList, ok := records.([]map[string]interface{}); ok {
		for _, record := range recordList {
			edge := &CommunityEdge{
				BaseEdge: BaseEdge{
					Uuid:         record["uuid"].(string),
					GroupID:      record["group_id"].(string),
					SourceNodeID: record["source_node_uuid"].(string),
					TargetNodeID: record["target_node_uuid"].(string),
					CreatedAt:    record["created_at"].(time.Time),
				},
			}
			edges = append(edges, edge)
		}
	}

	return edges, nil
}

// buildEntityEdgeFromRecord decodes a driver row into an EntityEdge,
// accounting for Ladybug's JSON-encoded attributes column.
func buildEntityEdgeFromRecord(record map[string]interface{}, provider GraphProvider) *EntityEdge {
	var attributes map[string]interface{}

	if provider == GraphProviderLadybug {
		// ladybug stores attributes as JSON string
		if attrStr, ok := record["attributes"].(string); ok && attrStr != "" {
			json.Unmarshal([]byte(attrStr), &attributes)
		}
	} else {
		// Other providers store attributes as map, need to filter out standard fields
		if attrMap, ok := record["attributes"].(map[string]interface{}); ok {
			attributes = make(map[string]interface{})
			for k, v := range attrMap {
				switch k {
				case "uuid", "source_node_uuid", "target_node_uuid", "fact", "fact_embedding",
					"name", "group_id", "episodes", "created_at", "expired_at", "valid_at", "invalid_at":
					// Skip standard fields
				default:
					attributes[k] = v
				}
			}
		}
	}

	episodes := []string{}
	if episodeList, ok := record["episodes"].([]interface{}); ok {
		for _, ep := range episodeList {
			if epStr, ok := ep.(string); ok {
				episodes = append(episodes, epStr)
			}
		}
	}

	// Handle optional time fields
	var expiredAt, validAt, invalidAt *time.Time
	if t, ok := record["expired_at"].(time.Time); ok {
		expiredAt = &t
	}
	if t, ok := record["valid_at"].(time.Time); ok {
		validAt = &t
	}
	if t, ok := record["invalid_at"].(time.Time); ok {
		invalidAt = &t
	}

	return &EntityEdge{
		BaseEdge: BaseEdge{
			Uuid:         record["uuid"].(string),
			GroupID:      record["group_id"].(string),
			SourceNodeID: record["source_node_uuid"].(string),
			TargetNodeID: record["target_node_uuid"].(string),
			CreatedAt:    record["created_at"].(time.Time),
		},
		Name:          record["name"].(string),
		Fact:          record["fact"].(string),
		FactEmbedding: convertToFloat32Array(record["fact_embedding"]),
		Episodes:      episodes,
		ExpiredAt:     expiredAt,
		ValidAt:       validAt,
		InvalidAt:     invalidAt,
		Attributes:    attributes,
	}
}

// Helper function to convert embedding to []float32
func convertToFloat32Array(embedding interface{}) []float32 {
	if embedding == nil {
		return nil
	}

	if floatList, ok := embedding.([]interface{}); ok {
		result := make([]float32, len(floatList))
		for i, f := range floatList {
			if fVal, ok := f.(float64); ok {
				result[i] = float32(fVal)
			}
		}
		return result
	}

	return nil
}
