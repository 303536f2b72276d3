// Package service exposes a filter registry over HTTP.
//
// Endpoints:
//
//	POST /router/{uuid}  body {"text": ...} -> {"found", "uuid", "text"}
//	POST /reload         -> {"status", "filters_loaded", "filter_uuids"}
//	GET  /filters        -> {"total", "filters": [{"uuid", "source_file", "num_entries"}]}
//	GET  /               -> {"service", "filters_loaded", "filter_uuids"}
//
// Errors are returned as {"detail": ...} with 404 for unknown filter UUIDs
// and 400 for malformed request bodies.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	sifterrors "github.com/siftd/sift/errors"
	"github.com/siftd/sift/registry"
)

// ServiceName is reported by the root endpoint.
const ServiceName = "sift filter service"

// QueryRequest is the body of POST /router/{uuid}.
type QueryRequest struct {
	Text string `json:"text"`
}

// QueryResponse is the reply to POST /router/{uuid}.
type QueryResponse struct {
	Found bool   `json:"found"`
	UUID  string `json:"uuid"`
	Text  string `json:"text"`
}

// ReloadResponse is the reply to POST /reload.
type ReloadResponse struct {
	Status        string   `json:"status"`
	FiltersLoaded int      `json:"filters_loaded"`
	FilterUUIDs   []string `json:"filter_uuids"`
}

// FilterInfo is one element of the GET /filters listing.
type FilterInfo struct {
	UUID       string `json:"uuid"`
	SourceFile string `json:"source_file,omitempty"`
	NumEntries int    `json:"num_entries"`
}

type handler struct {
	reg *registry.Registry
	log *slog.Logger
}

// NewHandler returns the HTTP handler for the filter service backed by reg.
// A nil logger discards request diagnostics.
func NewHandler(reg *registry.Registry, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := &handler{reg: reg, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("POST /router/{uuid}", h.query)
	mux.HandleFunc("POST /reload", h.reload)
	mux.HandleFunc("GET /filters", h.list)
	return mux
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":        ServiceName,
		"filters_loaded": h.reg.Len(),
		"filter_uuids":   h.reg.UUIDs(),
	})
}

func (h *handler) query(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.reg.Lookup(uuid)
	if err != nil {
		if errors.Is(err, sifterrors.ErrFilterNotFound) {
			writeDetail(w, http.StatusNotFound, "filter with UUID '"+uuid+"' not found")
			return
		}
		h.log.Error("filter lookup failed", "uuid", uuid, "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	found := entry.Filter.Contains([]byte(req.Text))
	h.log.Debug("filter query", "uuid", uuid, "found", found)
	writeJSON(w, http.StatusOK, QueryResponse{
		Found: found,
		UUID:  uuid,
		Text:  req.Text,
	})
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	n, err := h.reg.Reload(r.Context())
	if err != nil {
		h.log.Error("reload failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "reload failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		Status:        "success",
		FiltersLoaded: n,
		FilterUUIDs:   h.reg.UUIDs(),
	})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	entries := h.reg.Entries()
	infos := make([]FilterInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, FilterInfo{
			UUID:       e.UUID,
			SourceFile: e.SourceFile,
			NumEntries: e.NumEntries,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(infos),
		"filters": infos,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
