package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"oxygen-dispatch-service/internal/api/dto"
	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/ports"
	"oxygen-dispatch-service/internal/services"
)

type ZoneHandler struct {
	Repo   ports.ZoneRepository
	Events ports.EventPublisher
}

func (h *ZoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateZoneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	severity, err := domain.ParseSeverity(req.Severity)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "severity must be low, medium, high or critical")
		return
	}

	center, err := domain.NewCoordinate(req.CenterLat, req.CenterLng)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	zone, err := domain.NewEmergencyZone(req.Name, req.Description, center, req.RadiusKM, severity, req.CreatedBy, time.Now().UTC())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Repo.Create(r.Context(), zone); err != nil {
		log.Error().Err(err).Msg("create zone failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewZoneResponse(zone))
}

func (h *ZoneHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	zones, err := h.Repo.List(r.Context(), activeOnly)
	if err != nil {
		log.Error().Err(err).Msg("list zones failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListZonesResponse{Zones: make([]dto.ZoneResponse, 0, len(zones))}
	for _, z := range zones {
		res.Zones = append(res.Zones, dto.NewZoneResponse(z))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ZoneHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid zone id")
		return
	}

	// The alert message body is optional.
	var req dto.ActivateZoneRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	zone, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "zone not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get zone failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	zone.Activate(req.AlertMessage, time.Now().UTC())

	if err := h.Repo.SetActive(r.Context(), zone); err != nil {
		log.Error().Err(err).Msg("activate zone failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Events.Publish(r.Context(), ports.EventZoneActivated, map[string]any{
		"zone_id":       zone.ID.String(),
		"severity":      string(zone.Severity),
		"alert_message": zone.AlertMessage,
	}); err != nil {
		log.Warn().Err(err).Msg("publish zone.activated failed")
	}

	writeJSON(w, r, http.StatusOK, dto.NewZoneResponse(zone))
}

func (h *ZoneHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid zone id")
		return
	}

	zone, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "zone not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get zone failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	zone.Deactivate(time.Now().UTC())

	if err := h.Repo.SetActive(r.Context(), zone); err != nil {
		log.Error().Err(err).Msg("deactivate zone failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Events.Publish(r.Context(), ports.EventZoneDeactivated, map[string]any{
		"zone_id": zone.ID.String(),
	}); err != nil {
		log.Warn().Err(err).Msg("publish zone.deactivated failed")
	}

	writeJSON(w, r, http.StatusOK, dto.NewZoneResponse(zone))
}

// Check returns the active zones containing a point, most severe first.
// Informational only: alerting on the result is the notification
// service's job.
func (h *ZoneHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckZonesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	point, err := domain.NewCoordinate(req.Lat, req.Lng)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	zones, err := h.Repo.List(r.Context(), true)
	if err != nil {
		log.Error().Err(err).Msg("list zones failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	containing := services.ZonesContaining(point, zones)

	res := dto.ListZonesResponse{Zones: make([]dto.ZoneResponse, 0, len(containing))}
	for _, z := range containing {
		res.Zones = append(res.Zones, dto.NewZoneResponse(z))
	}
	writeJSON(w, r, http.StatusOK, res)
}
