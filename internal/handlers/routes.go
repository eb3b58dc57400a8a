package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the API surface. The stream endpoint is the only
// unauthenticated media route: its descriptor is its credential.
func RegisterRoutes(r *mux.Router, h *Handler, authLimit, uploadLimit, viewLimit *RateLimiter) {
	r.HandleFunc("/healthz", HandleHealth).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.Use(authLimit.Middleware)
	authRoutes.HandleFunc("/signup", h.Signup).Methods("POST")
	authRoutes.HandleFunc("/login", h.Login).Methods("POST")

	api.HandleFunc("/media/stream/{id}", h.Stream).Methods("GET")

	protected := api.PathPrefix("/media").Subrouter()
	protected.Use(h.RequireAuth)
	protected.Handle("", uploadLimit.Middleware(http.HandlerFunc(h.Upload))).Methods("POST")
	protected.HandleFunc("/{id}/stream-url", h.StreamURL).Methods("GET")
	protected.Handle("/{id}/view", viewLimit.Middleware(http.HandlerFunc(h.LogView))).Methods("POST")
	protected.HandleFunc("/{id}/analytics", h.Analytics).Methods("GET")
}
