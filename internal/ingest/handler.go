package ingest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ingest/sources", h.ListSources).Methods("GET")
	router.HandleFunc("/api/ingest/{source}/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/ingest/{source}/files", h.IngestFile).Methods("POST")
	router.HandleFunc("/api/ingest/{source}/batch", h.IngestBatch).Methods("POST")
}

func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sources": h.service.Sources()})
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]
	files, err := h.service.ListFiles(r.Context(), source, r.URL.Query().Get("location"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key parameter is required", http.StatusBadRequest)
		return
	}

	report, err := h.service.IngestFile(r.Context(), mux.Vars(r)["source"], key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.IngestLocation(r.Context(), mux.Vars(r)["source"], r.URL.Query().Get("location"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownSource):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrMissingColumn):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("ingest: request failed")
		http.Error(w, "ingestion failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("ingest: failed to encode response")
	}
}
