package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"lerncoach/internal/config"
	"lerncoach/internal/llm"
	"lerncoach/internal/models"
	"lerncoach/internal/storage"
)

// Recommender liefert Videovorschläge zu einem Thema
type Recommender interface {
	Recommend(ctx context.Context, topic string) models.Recommendation
}

// Handler verwaltet alle API-Endpunkte
type Handler struct {
	store    storage.Storage
	llm      llm.Provider
	coach    *llm.Coach
	videos   Recommender // nil, wenn kein YouTube-Key konfiguriert ist
	config   *config.Config
	upgrader websocket.Upgrader
}

// NewHandler erstellt einen neuen API-Handler
func NewHandler(store storage.Storage, llmProvider llm.Provider, videos Recommender, cfg *config.Config) *Handler {
	return &Handler{
		store:  store,
		llm:    llmProvider,
		coach:  llm.NewCoach(llmProvider, store),
		videos: videos,
		config: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Response-Helper
func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

// === System Endpoints ===

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	llmAvailable := h.llm.IsAvailable(ctx)

	jsonResponse(w, map[string]interface{}{
		"status":        "ok",
		"llm_available": llmAvailable,
		"llm_provider":  h.llm.GetName(),
		"timestamp":     time.Now(),
	}, http.StatusOK)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jsonResponse(w, map[string]interface{}{
		"llm_available":    h.llm.IsAvailable(ctx),
		"llm_provider":     h.llm.GetName(),
		"current_model":    h.llm.GetCurrentModel(),
		"storage_backend":  h.config.StorageBackend,
		"videos_available": h.videos != nil,
	}, http.StatusOK)
}

func (h *Handler) GetModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	modelList, err := h.llm.GetModels(ctx)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Konnte Modelle nicht abrufen: %v", err), http.StatusServiceUnavailable)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"models":        modelList,
		"current_model": h.llm.GetCurrentModel(),
	}, http.StatusOK)
}

// SetModel ändert das aktive LLM-Modell
func (h *Handler) SetModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	if req.Model == "" {
		errorResponse(w, "Kein Modell angegeben", http.StatusBadRequest)
		return
	}

	h.llm.SetModel(req.Model)
	h.config.DefaultModel = req.Model

	jsonResponse(w, map[string]interface{}{
		"message":       "Modell geändert",
		"current_model": req.Model,
	}, http.StatusOK)
}

// === Coach Endpoints ===

// AskCoach ist der Kern der Interaktion: Frage an das Modell, Antwort
// anzeigen, bei Verständnisproblemen zusätzlich Videos empfehlen.
func (h *Handler) AskCoach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Query string `json:"query"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}

	// Leere Eingaben sind Warnungen, keine fatalen Fehler
	if req.Name == "" {
		errorResponse(w, "Bitte gib deinen Namen ein.", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		errorResponse(w, "Bitte gib eine Frage ein.", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	reply, needsFollowUp, err := h.coach.Ask(ctx, req.Name, req.Query)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Coach-Fehler: %v", err), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"reply":           reply,
		"needs_follow_up": needsFollowUp,
	}

	// Videos nur bei Folgebedarf, Thema ist die rohe Frage
	if needsFollowUp && h.videos != nil {
		resp["videos"] = h.videos.Recommend(ctx, req.Query)
	}

	jsonResponse(w, resp, http.StatusOK)
}

// AskCoachStream ist die Streaming-Variante über WebSocket
func (h *Handler) AskCoachStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req struct {
		Name  string `json:"name"`
		Query string `json:"query"`
	}

	if err := conn.ReadJSON(&req); err != nil {
		return
	}

	if req.Name == "" || req.Query == "" {
		conn.WriteJSON(map[string]string{"error": "Name und Frage dürfen nicht leer sein."})
		return
	}

	ctx := r.Context()
	chunks, needsFollowUp, err := h.coach.AskStream(ctx, req.Name, req.Query)
	if err != nil {
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	for chunk := range chunks {
		if chunk.Error != nil {
			conn.WriteJSON(map[string]string{"error": chunk.Error.Error()})
			return
		}
		if chunk.Done {
			break
		}
		conn.WriteJSON(map[string]interface{}{
			"content": chunk.Content,
			"done":    false,
		})
	}

	conn.WriteJSON(map[string]interface{}{
		"done":            true,
		"needs_follow_up": needsFollowUp,
	})
}

// === Studenten Endpoints ===

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	record, err := h.store.GetStudent(r.Context(), name)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Fehler beim Laden: %v", err), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, record, http.StatusOK)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	record, err := h.store.GetStudent(r.Context(), name)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Fehler beim Laden: %v", err), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"name":     record.Name,
		"progress": record.Progress,
	}, http.StatusOK)
}

// UpdateProgress merge-schreibt einen Fortschritts-Patch. Ohne Body wird
// last_updated auf den aktuellen UTC-Zeitstempel gesetzt.
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	patch := map[string]interface{}{}
	json.NewDecoder(r.Body).Decode(&patch)
	if len(patch) == 0 {
		patch["last_updated"] = time.Now().UTC().Format(time.RFC3339)
	}

	if err := h.store.SetProgress(r.Context(), name, patch); err != nil {
		errorResponse(w, fmt.Sprintf("Fehler beim Speichern: %v", err), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"message":  "Fortschritt aktualisiert!",
		"progress": patch,
	}, http.StatusOK)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	record, err := h.store.GetStudent(r.Context(), name)
	if err != nil {
		errorResponse(w, fmt.Sprintf("Fehler beim Laden: %v", err), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"name":    record.Name,
		"history": record.History,
		"count":   len(record.History),
	}, http.StatusOK)
}
