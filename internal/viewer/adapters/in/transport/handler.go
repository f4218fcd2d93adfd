package transport

import (
	"encoding/json"
	"net/http"

	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/ws"
	"bustracker/internal/viewer/application/usecase"
	"bustracker/internal/viewer/view"
)

type Handler struct {
	search   *usecase.SearchService
	renderer *view.Renderer
	hub      *ws.Hub
	log      *logger.Logger
}

func NewHandler(search *usecase.SearchService, renderer *view.Renderer, hub *ws.Hub, log *logger.Logger) *Handler {
	h := &Handler{
		search:   search,
		renderer: renderer,
		hub:      hub,
		log:      log,
	}
	hub.SetMessageHandler(h.handleWSMessage)
	return h
}

// Routes регистрирует endpoints viewer-service
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /buses", h.Buses)
	mux.HandleFunc("POST /buses/{bus_id}/focus", h.Focus)
	mux.HandleFunc("GET /ws", h.hub.ServeWS)
}

// Health — liveness probe
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "viewer"})
}

// Buses — GET /buses[?route=101]: одноразовое чтение, отрендеренное
// через общий рендерер, плюс JSON для вызвавшего.
func (h *Handler) Buses(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Query().Get("route")

	snap, err := h.search.Execute(r.Context(), route)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// Focus — POST /buses/{bus_id}/focus
func (h *Handler) Focus(w http.ResponseWriter, r *http.Request) {
	busID := r.PathValue("bus_id")
	h.renderer.Focus(busID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWSMessage — входящие сообщения от браузера
func (h *Handler) handleWSMessage(client *ws.Client, msgType string, data json.RawMessage) error {
	switch msgType {
	case "focus":
		var req struct {
			BusID string `json:"bus_id"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return err
		}
		h.renderer.Focus(req.BusID)
		return nil

	default:
		h.log.Warn(logger.Entry{
			Action:  "ws_unknown_message",
			Message: msgType,
		})
		return nil
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
