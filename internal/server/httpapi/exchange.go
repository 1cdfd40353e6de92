package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type exportRequest struct {
	IDs []int64 `json:"ids"`
}

type importRequest struct {
	Data string `json:"data"`
}

// handleExport returns the selected records as a downloadable document.
// An empty or absent body exports everything.
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) {
	var body exportRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	doc, err := r.services.Exchange.Export(req.Context(), body.IDs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="observations.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// handleImport ingests a serialized document. Per-record failures land in
// the result's errors list; only a storage fault is a request-level error.
func (r *Router) handleImport(w http.ResponseWriter, req *http.Request) {
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	var body importRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeBodyError(w, err)
		return
	}
	if body.Data == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "data required"})
		return
	}
	result, err := r.services.Exchange.Import(req.Context(), []byte(body.Data))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
