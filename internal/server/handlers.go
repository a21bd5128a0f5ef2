package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/homescout/homescout/internal/models"
	"github.com/homescout/homescout/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request",
		zap.String("term", query.Term),
		zap.Int("page", query.Page),
		zap.Int("size", query.Size))
	result := s.orchestrator.Search(r.Context(), &query)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	limit := s.config.Search.SuggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	suggestions := s.orchestrator.Suggestions(r.Context(), term, limit)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (s *Server) handleIndexListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("index listing request", zap.String("id", id))
	if !s.orchestrator.IndexListing(r.Context(), id) {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "indexed": false})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "indexed": true})
}

func (s *Server) handleDeleteListingIndex(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete listing index request", zap.String("id", id))
	removed := s.orchestrator.DeleteListingIndex(r.Context(), id)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "removed": removed})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("reindex requested")
	result := s.orchestrator.ReindexAll(r.Context())
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleInitIndex(w http.ResponseWriter, r *http.Request) {
	created := s.orchestrator.InitializeIndex()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"initialized": created})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingCount, err := s.storage.CountListings(ctx)
	if err != nil {
		s.logger.Error("status: count listings failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"listings":     listingCount,
		"index_usable": s.orchestrator.IndexUsable(),
		"index_docs":   s.orchestrator.IndexDocCount(),
		"config": map[string]interface{}{
			"database_path": s.config.Storage.DatabasePath,
			"index_path":    s.config.Index.Path,
			"index_name":    s.config.Index.Name,
		},
	}
	diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Index.Path)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
