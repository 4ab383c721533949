package dto

import "time"

// SearchQuery represents a request to POST /search. GroupIDs narrows the
// search to a set of tenants; an empty slice searches across all of them.
type SearchQuery struct {
	GroupIDs []string `json:"group_ids,omitempty"`
	Query    string   `json:"query" binding:"required"`
	MaxFacts int      `json:"max_facts,omitempty"`
}

// SearchResults is the response body for POST /search.
type SearchResults struct {
	Facts []FactResult `json:"facts"`
	Total int          `json:"total"`
}

// GetMemoryRequest represents a request to POST /get-memory. CenterNodeUUID,
// when set, biases retrieval toward nodes reachable from that node.
type GetMemoryRequest struct {
	GroupID        string    `json:"group_id" binding:"required"`
	MaxFacts       int       `json:"max_facts,omitempty"`
	CenterNodeUUID string    `json:"center_node_uuid,omitempty"`
	Messages       []Message `json:"messages" binding:"required"`
}

// GetMemoryResponse is the response body for POST /get-memory.
type GetMemoryResponse struct {
	Facts []FactResult `json:"facts"`
	Total int          `json:"total,omitempty"`
}

// Episode represents one episode as returned by GET /episodes/{group_id}.
type Episode struct {
	UUID      string    `json:"uuid"`
	GroupID   string    `json:"group_id"`
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GetEpisodesResponse wraps the episodes returned by the legacy
// /api/v1/episodes/{group_id} route; the bare /episodes/{group_id} route
// returns the Episodes slice directly per the external contract.
type GetEpisodesResponse struct {
	Episodes []Episode `json:"episodes"`
	Total    int       `json:"total"`
}
