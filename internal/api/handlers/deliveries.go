package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"oxygen-dispatch-service/internal/api/dto"
	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/geo"
	"oxygen-dispatch-service/internal/ports"
)

type DeliveryHandler struct {
	Repo   ports.DeliveryRepository
	Events ports.EventPublisher
}

// Create registers a new delivery request. Coordinates are validated at
// the boundary and the pickup->delivery distance is precomputed a single
// time.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDeliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.CustomerID) == "" {
		writeError(w, r, http.StatusBadRequest, "order_id and customer_id are required")
		return
	}
	if req.Quantity < 1 {
		writeError(w, r, http.StatusBadRequest, "quantity must be >= 1")
		return
	}

	priority := domain.PriorityNormal
	if req.Priority != "" {
		var err error
		priority, err = domain.ParsePriority(req.Priority)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "priority must be NORMAL, HIGH or URGENT")
			return
		}
	}

	pickup, err := domain.NewCoordinate(req.PickupLat, req.PickupLng)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	delivery, err := domain.NewCoordinate(req.DeliveryLat, req.DeliveryLng)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	stop := &domain.DeliveryStop{
		ID:                  uuid.New(),
		OrderID:             req.OrderID,
		CustomerID:          req.CustomerID,
		CylinderSize:        req.CylinderSize,
		Quantity:            req.Quantity,
		Priority:            priority,
		Status:              domain.DeliveryPending,
		PickupAddress:       req.PickupAddress,
		Pickup:              pickup,
		DeliveryAddress:     req.DeliveryAddress,
		Delivery:            delivery,
		DistanceKM:          geo.DistanceKM(pickup, delivery),
		SpecialInstructions: req.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := h.Repo.Create(r.Context(), stop); err != nil {
		log.Error().Err(err).Msg("create delivery failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Events.Publish(r.Context(), ports.EventDeliveryCreated, map[string]any{
		"delivery_id": stop.ID.String(),
		"order_id":    stop.OrderID,
		"priority":    string(stop.Priority),
	}); err != nil {
		log.Warn().Err(err).Msg("publish delivery.created failed")
	}

	writeJSON(w, r, http.StatusCreated, dto.NewDeliveryResponse(stop))
}

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := ports.DeliveryFilters{}

	if s := q.Get("status"); s != "" {
		status, err := domain.ParseDeliveryStatus(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid status filter")
			return
		}
		filters.Status = status
	}
	if p := q.Get("priority"); p != "" {
		priority, err := domain.ParsePriority(p)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid priority filter")
			return
		}
		filters.Priority = priority
	}
	if d := q.Get("driver_id"); d != "" {
		driverID, err := uuid.Parse(d)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid driver_id")
			return
		}
		filters.DriverID = &driverID
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filters.Limit = n
	}
	if o := q.Get("offset"); o != "" {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filters.Offset = n
	}

	deliveries, err := h.Repo.List(r.Context(), filters)
	if err != nil {
		log.Error().Err(err).Msg("list deliveries failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDeliveriesResponse{Deliveries: make([]dto.DeliveryResponse, 0, len(deliveries))}
	for _, d := range deliveries {
		res.Deliveries = append(res.Deliveries, dto.NewDeliveryResponse(d))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}

	stop, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "delivery not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get delivery failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDeliveryResponse(stop))
}

// Tracking returns the status history of a delivery, oldest entry first.
func (h *DeliveryHandler) Tracking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}

	if _, err := h.Repo.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "delivery not found")
			return
		}
		log.Error().Err(err).Msg("get delivery failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	entries, err := h.Repo.ListTracking(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("list tracking failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.TrackingHistoryResponse{
		DeliveryID: id.String(),
		History:    make([]dto.TrackingEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		res.History = append(res.History, dto.TrackingEntryResponse{
			Status:    string(e.Status),
			UpdatedBy: e.UpdatedBy,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}

// UpdateStatus applies a tracking update. Illegal transitions are a 409.
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid delivery id")
		return
	}

	var req dto.UpdateDeliveryStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	next, err := domain.ParseDeliveryStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid status value")
		return
	}

	stop, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "delivery not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get delivery failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := stop.TransitionTo(next, time.Now().UTC()); err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	updatedBy := req.UpdatedBy
	if updatedBy == "" {
		updatedBy = "system"
	}

	if err := h.Repo.UpdateStatus(r.Context(), stop, updatedBy); err != nil {
		log.Error().Err(err).Msg("update delivery status failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Events.Publish(r.Context(), ports.EventDeliveryStatusChanged, map[string]any{
		"delivery_id": stop.ID.String(),
		"status":      string(stop.Status),
		"updated_by":  updatedBy,
	}); err != nil {
		log.Warn().Err(err).Msg("publish delivery.status_changed failed")
	}

	writeJSON(w, r, http.StatusOK, dto.NewDeliveryResponse(stop))
}
