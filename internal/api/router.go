package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter erstellt den HTTP-Router mit allen Endpoints
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	// API-Version
	api := r.PathPrefix("/api/v1").Subrouter()

	// System
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.HandleFunc("/status", h.GetStatus).Methods("GET")
	api.HandleFunc("/models", h.GetModels).Methods("GET")
	api.HandleFunc("/models", h.SetModel).Methods("POST")

	// Coach
	api.HandleFunc("/coach", h.AskCoach).Methods("POST")
	api.HandleFunc("/coach/stream", h.AskCoachStream)

	// Studenten
	api.HandleFunc("/students/{name}", h.GetStudent).Methods("GET")
	api.HandleFunc("/students/{name}/progress", h.GetProgress).Methods("GET")
	api.HandleFunc("/students/{name}/progress", h.UpdateProgress).Methods("POST")
	api.HandleFunc("/students/{name}/history", h.GetHistory).Methods("GET")

	// Statische Dateien (Frontend)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("./web/static")))

	// CORS für lokale Entwicklung
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}
