package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/zepgraph/zepgraph/pkg/server/dto"
)

// ListEpisodes handles GET /episodes/{group_id}, returning the bare episode
// array the external contract specifies (unlike the wrapped
// /api/v1/episodes/{group_id} response GetEpisodes returns).
func (h *RetrieveHandler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "group_id")
	if groupID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "group_id parameter is required")
		return
	}

	lastN := 10
	if lastNStr := r.URL.Query().Get("last_n"); lastNStr != "" {
		n, err := strconv.Atoi(lastNStr)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "last_n must be a valid integer")
			return
		}
		lastN = n
	}
	if lastN <= 0 {
		lastN = 10
	}
	if lastN > 100 {
		lastN = 100
	}

	episodeNodes, err := h.zepgraph.GetEpisodes(r.Context(), groupID, lastN)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "retrieval_failed", err.Error())
		return
	}

	episodes := make([]dto.Episode, 0, len(episodeNodes))
	for _, node := range episodeNodes {
		ep := dto.Episode{
			UUID:      node.Uuid,
			GroupID:   node.GroupID,
			Content:   node.Content,
			CreatedAt: node.CreatedAt,
		}
		if source, ok := node.Metadata["source"].(string); ok {
			ep.Source = source
		}
		episodes = append(episodes, ep)
	}

	writeJSON(w, http.StatusOK, episodes)
}

// DeleteGroup handles DELETE /group/{group_id}, removing every node and
// edge belonging to that tenant.
func (h *IngestHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "group_id")
	if groupID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "group_id parameter is required")
		return
	}

	if err := h.zepgraph.ClearGraph(r.Context(), groupID); err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "clear_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IngestResponse{Success: true})
}

// ClearAll handles POST /clear, wiping every known group. It is meant for
// test/dev environments; GetAllGroupIDs drives the iteration since the
// Engine interface has no single "drop everything" primitive.
func (h *IngestHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	dp, ok := h.zepgraph.(driverProvider)
	if !ok {
		writeErrorJSON(w, http.StatusInternalServerError, "clear_failed", "driver does not support listing groups")
		return
	}

	ctx := r.Context()
	groupIDs, err := dp.GetDriver().GetAllGroupIDs(ctx)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "clear_failed", err.Error())
		return
	}

	var failed []string
	for _, groupID := range groupIDs {
		if err := h.zepgraph.ClearGraph(ctx, groupID); err != nil {
			failed = append(failed, groupID)
		}
	}

	if len(failed) > 0 {
		writeErrorJSON(w, http.StatusInternalServerError, "clear_failed", fmt.Sprintf("failed to clear groups: %v", failed))
		return
	}

	writeJSON(w, http.StatusOK, dto.IngestResponse{Success: true})
}
