package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"oxygen-dispatch-service/internal/api/dto"
	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/ports"
	"oxygen-dispatch-service/internal/services"
)

type RouteHandler struct {
	Dispatcher *services.Dispatcher
	Repo       ports.RouteRepository
}

// Plan sequences the requested deliveries for one driver and persists
// the resulting route.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid driver_id")
		return
	}

	var driverLocation *domain.Coordinate
	if req.DriverLat != nil || req.DriverLng != nil {
		if req.DriverLat == nil || req.DriverLng == nil {
			writeError(w, r, http.StatusBadRequest, "driver_lat and driver_lng must be supplied together")
			return
		}
		c, err := domain.NewCoordinate(*req.DriverLat, *req.DriverLng)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		driverLocation = &c
	}

	if len(req.DeliveryIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "delivery_ids must not be empty")
		return
	}
	deliveryIDs := make([]uuid.UUID, 0, len(req.DeliveryIDs))
	for _, raw := range req.DeliveryIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid delivery id "+raw)
			return
		}
		deliveryIDs = append(deliveryIDs, id)
	}

	route, err := h.Dispatcher.PlanRoute(r.Context(), services.PlanRouteRequest{
		DriverID:       driverID,
		DriverLocation: driverLocation,
		DeliveryIDs:    deliveryIDs,
		RouteName:      req.RouteName,
		Now:            time.Now().UTC(),
	})
	switch {
	case errors.Is(err, services.ErrTooManyStops):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("plan route failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewRouteResponse(route))
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid route id")
		return
	}

	route, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get route failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(route))
}

func (h *RouteHandler) ListByDriver(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	driverID, err := uuid.Parse(q.Get("driver_id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "driver_id query parameter is required")
		return
	}

	var status domain.RouteStatus
	if s := q.Get("status"); s != "" {
		switch domain.RouteStatus(s) {
		case domain.RoutePlanned, domain.RouteActive, domain.RouteCompleted:
			status = domain.RouteStatus(s)
		default:
			writeError(w, r, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	routes, err := h.Repo.ListByDriver(r.Context(), driverID, status)
	if err != nil {
		log.Error().Err(err).Msg("list routes failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, route := range routes {
		res.Routes = append(res.Routes, dto.NewRouteResponse(route))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Dispatcher.StartRoute)
}

func (h *RouteHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Dispatcher.CompleteRoute)
}

func (h *RouteHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Route, error),
) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid route id")
		return
	}

	route, err := fn(r.Context(), id, time.Now().UTC())
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	case errors.Is(err, domain.ErrRouteLocked), errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("route transition failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(route))
}
