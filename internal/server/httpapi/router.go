package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/service"
)

type Router struct {
	services        *service.Services
	logger          *log.Logger
	maxRequestBytes int64
}

func NewRouter(services *service.Services, logger *log.Logger, maxRequestBytes int64) http.Handler {
	r := &Router{services: services, logger: logger, maxRequestBytes: maxRequestBytes}
	mux := chi.NewRouter()

	mux.Get("/health", r.handleHealth)
	mux.Post("/login", r.handleLogin)
	mux.Post("/logout", r.handleLogout)
	mux.Get("/current-user", r.handleCurrentUser)

	mux.Group(func(pr chi.Router) {
		pr.Use(r.authMiddleware)
		pr.Post("/create-account", r.handleCreateAccount)
		pr.Post("/observations", r.handleCreateObservation)
		pr.Get("/observations", r.handleListObservations)
		pr.Get("/observations/{id}", r.handleGetObservation)
		pr.Patch("/observations/{id}", r.handleUpdateObservation)
		pr.Post("/observations/search", r.handleSearchObservations)
		pr.Post("/observations/export", r.handleExport)
		pr.Post("/observations/import", r.handleImport)
	})

	return mux
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
