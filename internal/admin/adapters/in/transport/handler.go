package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	in "bustracker/internal/admin/application/ports/in"
	"bustracker/internal/admin/domain"
	"bustracker/internal/shared/logger"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type Handler struct {
	registerUC in.RegisterBusUseCase
	log        *logger.Logger
}

func NewHandler(registerUC in.RegisterBusUseCase, log *logger.Logger) *Handler {
	return &Handler{
		registerUC: registerUC,
		log:        log,
	}
}

// Routes регистрирует endpoints admin-service
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /buses", h.RegisterBus)
}

// Health — liveness probe
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "admin"})
}

// RegisterBus — POST /buses
func (h *Handler) RegisterBus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BusID string `json:"bus_id"`
		Route string `json:"route"`
	}
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	output, err := h.registerUC.Execute(r.Context(), in.RegisterBusInput{
		BusID: req.BusID,
		Route: req.Route,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRegisterFieldsMissing) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		// ошибка хранилища уходит пользователю как есть
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, output)
}

func readJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	return json.Unmarshal(body, dst)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
