package transport

import (
	"errors"
	"net/http"
	"time"

	in "bustracker/internal/driver/application/ports/in"
	"bustracker/internal/driver/adapters/out/geo"
	"bustracker/internal/driver/domain"
	"bustracker/internal/shared/logger"
)

type Handler struct {
	shareUC in.ShareUseCase
	source  *geo.DeviceSource
	log     *logger.Logger
}

func NewHandler(shareUC in.ShareUseCase, source *geo.DeviceSource, log *logger.Logger) *Handler {
	return &Handler{
		shareUC: shareUC,
		source:  source,
		log:     log,
	}
}

// Routes регистрирует endpoints driver-service
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /share/start", h.StartShare)
	mux.HandleFunc("POST /share/stop", h.StopShare)
	mux.HandleFunc("GET /share/status", h.ShareStatus)
	mux.HandleFunc("POST /locate", h.LocateOnce)
	mux.HandleFunc("POST /drivers/{bus_id}/fix", h.OfferFix)
}

// Health — liveness probe
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "driver"})
}

// StartShare — POST /share/start
func (h *Handler) StartShare(w http.ResponseWriter, r *http.Request) {
	var req StartShareRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	output, err := h.shareUC.Start(r.Context(), in.StartShareInput{
		DriverName: req.DriverName,
		BusID:      req.BusID,
		Route:      req.Route,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShareFieldsMissing):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrAlreadySharing):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, output)
}

// StopShare — POST /share/stop
func (h *Handler) StopShare(w http.ResponseWriter, r *http.Request) {
	output, err := h.shareUC.Stop(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotSharing) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, output)
}

// ShareStatus — GET /share/status, локальный дисплей водителя
func (h *Handler) ShareStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.shareUC.Display())
}

// LocateOnce — POST /locate, одноразовый fix без записи в хранилище
func (h *Handler) LocateOnce(w http.ResponseWriter, r *http.Request) {
	output, err := h.shareUC.LocateOnce(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, output)
}

// OfferFix — POST /drivers/{bus_id}/fix, фид позиций от устройства
func (h *Handler) OfferFix(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		respondError(w, http.StatusBadRequest, "invalid coordinates")
		return
	}

	var at time.Time
	if req.RecordedAt > 0 {
		at = time.UnixMilli(req.RecordedAt)
	}
	h.source.Offer(req.Lat, req.Lng, at)

	h.log.Debug(logger.Entry{
		Action:    "fix_offered",
		Message:   "device fix accepted",
		RequestID: RequestIDFromContext(r.Context()),
		BusID:     r.PathValue("bus_id"),
		Additional: map[string]any{
			"lat": req.Lat,
			"lng": req.Lng,
		},
	})

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
