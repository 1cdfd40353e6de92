package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/models"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/repository"
)

func (r *Router) handleCreateObservation(w http.ResponseWriter, req *http.Request) {
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	var body models.ObservationRecord
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeBodyError(w, err)
		return
	}
	rec, err := r.services.Observations.Create(req.Context(), body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (r *Router) handleListObservations(w http.ResponseWriter, req *http.Request) {
	records, err := r.services.Observations.List(req.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (r *Router) handleGetObservation(w http.ResponseWriter, req *http.Request) {
	id, err := observationID(req)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	rec, err := r.services.Observations.Get(req.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (r *Router) handleUpdateObservation(w http.ResponseWriter, req *http.Request) {
	id, err := observationID(req)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	var patch models.ObservationPatch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		writeBodyError(w, err)
		return
	}
	rec, err := r.services.Observations.Update(req.Context(), id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (r *Router) handleSearchObservations(w http.ResponseWriter, req *http.Request) {
	var filter models.SearchFilter
	if err := json.NewDecoder(req.Body).Decode(&filter); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	records, err := r.services.Search.Search(req.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func observationID(req *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
}

func writeBodyError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request entity too large"})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
}
