package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"oxygen-dispatch-service/internal/api/dto"
	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/geo"
	"oxygen-dispatch-service/internal/ports"
	"oxygen-dispatch-service/internal/services"
)

type DriverHandler struct {
	Repo ports.DriverRepository
	// SearchRadiusKM bounds the nearest-driver lookup.
	SearchRadiusKM float64
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDriverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	vehicleType, err := domain.ParseVehicleType(req.VehicleType)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "vehicle_type must be MOTORCYCLE, CAR, VAN or TRUCK")
		return
	}

	driver, err := domain.NewDriver(req.Name, req.Phone, vehicleType, req.VehiclePlate, req.VehicleCapacity, time.Now().UTC())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Repo.Create(r.Context(), driver); err != nil {
		log.Error().Err(err).Msg("create driver failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewDriverResponse(driver))
}

func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	var status domain.DriverStatus
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := domain.ParseDriverStatus(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid status filter")
			return
		}
		status = parsed
	}

	drivers, err := h.Repo.List(r.Context(), status)
	if err != nil {
		log.Error().Err(err).Msg("list drivers failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDriversResponse{Drivers: make([]dto.DriverResponse, 0, len(drivers))}
	for _, d := range drivers {
		res.Drivers = append(res.Drivers, dto.NewDriverResponse(d))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid driver id")
		return
	}

	driver, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "driver not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get driver failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDriverResponse(driver))
}

// UpdateLocation records the driver's current position, making them a
// candidate for nearest-driver selection.
func (h *DriverHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid driver id")
		return
	}

	var req dto.UpdateDriverLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	location, err := domain.NewCoordinate(req.Lat, req.Lng)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	driver, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "driver not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get driver failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	driver.UpdateLocation(location, time.Now().UTC())

	if err := h.Repo.UpdateLocation(r.Context(), driver); err != nil {
		log.Error().Err(err).Msg("update driver location failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDriverResponse(driver))
}

func (h *DriverHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid driver id")
		return
	}

	var req dto.UpdateDriverStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	status, err := domain.ParseDriverStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "status must be AVAILABLE, BUSY or OFF_DUTY")
		return
	}

	driver, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "driver not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get driver failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	driver.SetStatus(status, time.Now().UTC())

	if err := h.Repo.SetStatus(r.Context(), driver); err != nil {
		log.Error().Err(err).Msg("update driver status failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDriverResponse(driver))
}

// Nearest returns the best available driver for a pickup location,
// scored on proximity, rating, and experience.
func (h *DriverHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	var req dto.NearestDriverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	pickup, err := domain.NewCoordinate(req.Lat, req.Lng)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	drivers, err := h.Repo.List(r.Context(), domain.DriverAvailable)
	if err != nil {
		log.Error().Err(err).Msg("list drivers failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	best := services.BestDriver(pickup, drivers, quantity, h.SearchRadiusKM)
	if best == nil {
		writeError(w, r, http.StatusNotFound, "no available driver in range")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NearestDriverResponse{
		Driver:     dto.NewDriverResponse(best),
		DistanceKM: geo.DistanceKM(pickup, *best.Location),
	})
}
