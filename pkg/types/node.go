package types

import (
	"context"
	"fmt"
	"time"
)

// NodeOperations is the subset of a graph driver that the node-level helpers
// below need: a single parameterized-query execution path. Neo4jDriver and
// LadybugDriver both satisfy it directly.
type NodeOperations interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (interface{}, interface{}, interface{}, error)
}

// GetEpisodicNodeByUUID loads an episodic memory node and touches its access
// stats: AccessCount is incremented and LastAccessedAt is set to now, the
// same bookkeeping a cache-hit get_memory call performs. A node whose
// ValidTo has already elapsed is still returned — liveness filtering is the
// caller's job, the same IsLive check pkg/rdf.Fact uses for temporal facts.
func GetEpisodicNodeByUUID(ctx context.Context, driver NodeOperations, uuid string) (*Node, error) {
	query := `
		MATCH (e:Episodic {uuid: $uuid})
		RETURN e.uuid AS uuid, e.name AS name, e.source AS source,
		       e.source_description AS source_description, e.content AS content,
		       e.valid_at AS valid_at, e.valid_to AS valid_to, e.entity_edges AS entity_edges,
		       e.group_id AS group_id, e.created_at AS created_at,
		       e.access_count AS access_count, e.memory_type AS memory_type
	`
	records, _, _, err := driver.ExecuteQuery(ctx, query, map[string]interface{}{"uuid": uuid})
	if err != nil {
		return nil, err
	}
	recordList, ok := records.([]map[string]interface{})
	if !ok || len(recordList) == 0 {
		return nil, fmt.Errorf("episode with UUID %s not found", uuid)
	}
	record := recordList[0]

	episode := &Node{Type: EpisodicNodeType}
	if id, ok := record["uuid"].(string); ok {
		episode.Uuid = id
	}
	if name, ok := record["name"].(string); ok {
		episode.Name = name
	}
	if content, ok := record["content"].(string); ok {
		episode.Content = content
	}
	if groupID, ok := record["group_id"].(string); ok {
		episode.GroupID = groupID
	}
	if sourceDesc, ok := record["source_description"].(string); ok {
		episode.Summary = sourceDesc
	}
	if validAt, ok := record["valid_at"].(time.Time); ok {
		episode.ValidFrom = validAt
	}
	if validTo, ok := record["valid_to"].(time.Time); ok {
		episode.ValidTo = &validTo
	}
	if memType, ok := record["memory_type"].(string); ok {
		episode.MemoryType = MemoryType(memType)
	}
	if accessCount, ok := record["access_count"].(int64); ok {
		episode.AccessCount = int(accessCount)
	}
	if entityEdges, ok := record["entity_edges"].([]interface{}); ok {
		edges := make([]string, len(entityEdges))
		for i, edge := range entityEdges {
			if edgeStr, ok := edge.(string); ok {
				edges[i] = edgeStr
			}
		}
		episode.EntityEdges = edges
	}

	now := time.Now().UTC()
	episode.AccessCount++
	episode.LastAccessedAt = &now
	touch := `
		MATCH (e:Episodic {uuid: $uuid})
		SET e.access_count = $access_count, e.last_accessed_at = $last_accessed_at
	`
	if _, _, _, err := driver.ExecuteQuery(ctx, touch, map[string]interface{}{
		"uuid":             uuid,
		"access_count":     episode.AccessCount,
		"last_accessed_at": now,
	}); err != nil {
		return nil, fmt.Errorf("touch access stats for episode %s: %w", uuid, err)
	}

	return episode, nil
}

// InvalidateNode closes a node's validity window at `at` instead of removing
// it — the temporal-supersession behavior rdf.Fact.IsLive assumes: once
// ValidTo <= at, search and Validate stop surfacing the node as live, but
// the row and its history stay queryable. This is the temporally-correct way
// to retire a memory; DeleteNode/DeleteNodesByUUIDs are for hard purges.
func InvalidateNode(ctx context.Context, driver NodeOperations, uuid string, at time.Time) error {
	query := `
		MATCH (n {uuid: $uuid})
		WHERE n:Entity OR n:Episodic OR n:Community
		SET n.valid_to = $valid_to
	`
	_, _, _, err := driver.ExecuteQuery(ctx, query, map[string]interface{}{"uuid": uuid, "valid_to": at})
	return err
}

// DeleteNode hard-deletes a node and detaches its edges. Used for
// right-to-erasure purges and test cleanup; InvalidateNode is preferred for
// normal supersession since it keeps the node queryable historically.
func DeleteNode(ctx context.Context, driver NodeOperations, node *Node) error {
	query := `
		MATCH (n {uuid: $uuid})
		WHERE n:Entity OR n:Episodic OR n:Community
		OPTIONAL MATCH (n)-[r]-()
		WITH collect(r.uuid) AS edge_uuids, n
		DETACH DELETE n
		RETURN edge_uuids
	`
	_, _, _, err := driver.ExecuteQuery(ctx, query, map[string]interface{}{"uuid": node.Uuid})
	return err
}

// DeleteNodesByUUIDs hard-deletes a batch of nodes across every node label,
// one statement per label since Cypher can't parameterize a node label.
func DeleteNodesByUUIDs(ctx context.Context, driver NodeOperations, uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}
	labels := []string{"Entity", "Episodic", "Community"}
	for _, label := range labels {
		query := fmt.Sprintf(`
			MATCH (n:%s)
			WHERE n.uuid IN $uuids
			DETACH DELETE n
		`, label)
		_, _, _, err := driver.ExecuteQuery(ctx, query, map[string]interface{}{"uuids": uuids})
		if err != nil {
			return err
		}
	}
	return nil
}

// GetMentionedNodes returns the distinct entity nodes any of the given
// episodic nodes MENTIONS — the graph-side half of entity resolution: a new
// episode's extracted entities are deduplicated against this result before
// add_memory creates new Entity nodes.
func GetMentionedNodes(ctx context.Context, driver NodeOperations, episodes []*Node) ([]*Node, error) {
	if len(episodes) == 0 {
		return []*Node{}, nil
	}
	episodeUUIDs := make([]string, len(episodes))
	for i, episode := range episodes {
		episodeUUIDs[i] = episode.Uuid
	}
	query := `
		MATCH (episode:Episodic)-[:MENTIONS]->(n:Entity)
		WHERE episode.uuid IN $uuids
		RETURN DISTINCT n.uuid AS uuid, n.name AS name, n.entity_type AS entity_type,
		       n.summary AS summary, n.group_id AS group_id, n.memory_type AS memory_type
	`
	records, _, _, err := driver.ExecuteQuery(ctx, query, map[string]interface{}{"uuids": episodeUUIDs})
	if err != nil {
		return nil, err
	}
	var nodes []*Node
	if recordList, ok := records.([]map[string]interface{}); ok {
		for _, record := range recordList {
			node := &Node{Type: EntityNodeType}
			if uuid, ok := record["uuid"].(string); ok {
				node.Uuid = uuid
			}
			if name, ok := record["name"].(string); ok {
				node.Name = name
			}
			if entityType, ok := record["entity_type"].(string); ok {
				node.EntityType = entityType
			}
			if summary, ok := record["summary"].(string); ok {
				node.Summary = summary
			}
			if groupID, ok := record["group_id"].(string); ok {
				node.GroupID = groupID
			}
			if memType, ok := record["memory_type"].(string); ok {
				node.MemoryType = MemoryType(memType)
			}
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// ParseNodeFromMap builds a Node from a loosely-typed driver record, used by
// both graph drivers when decoding rows that don't go through the typed
// record-scanning path (batch imports, RDF-mapper round trips).
func ParseNodeFromMap(data map[string]interface{}) (*Node, error) {
	node := &Node{Metadata: make(map[string]interface{})}
	if id, ok := data["uuid"].(string); ok {
		node.Uuid = id
	} else if id, ok := data["id"].(string); ok {
		node.Uuid = id
	}
	if name, ok := data["name"].(string); ok {
		node.Name = name
	}
	if groupID, ok := data["group_id"].(string); ok {
		node.GroupID = groupID
	}
	if content, ok := data["content"].(string); ok {
		node.Content = content
	}
	if summary, ok := data["summary"].(string); ok {
		node.Summary = summary
	}
	if validAt, ok := data["valid_at"].(time.Time); ok {
		node.ValidFrom = validAt
	} else if validFrom, ok := data["valid_from"].(time.Time); ok {
		node.ValidFrom = validFrom
	}
	if validTo, ok := data["valid_to"].(time.Time); ok {
		node.ValidTo = &validTo
	}
	if createdAt, ok := data["created_at"].(time.Time); ok {
		node.CreatedAt = createdAt
	}
	if updatedAt, ok := data["updated_at"].(time.Time); ok {
		node.UpdatedAt = updatedAt
	}
	if lastAccessed, ok := data["last_accessed_at"].(time.Time); ok {
		node.LastAccessedAt = &lastAccessed
	}
	if accessCount, ok := data["access_count"].(int); ok {
		node.AccessCount = accessCount
	}
	if memType, ok := data["memory_type"].(string); ok {
		node.MemoryType = MemoryType(memType)
	}
	node.Type = EpisodicNodeType
	if episodeTypeStr, ok := data["episode_type"].(string); ok {
		node.EpisodeType = EpisodeType(episodeTypeStr)
	}
	return node, nil
}

// ReverseNodes reverses a slice of nodes in place, used to flip chronological
// episode lists to most-recent-first without a second allocation.
func ReverseNodes(nodes []*Node) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
}
