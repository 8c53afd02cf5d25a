package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"oxygen-dispatch-service/internal/api/dto"
	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/ports"
	"oxygen-dispatch-service/internal/services"
)

type ETAHandler struct {
	Estimator *services.ETAEstimator
	Cache     ports.ETACache
}

// Estimate computes a delivery ETA. Results are cached briefly keyed by
// rounded coordinates and priority; cache failures degrade to a fresh
// computation.
func (h *ETAHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req dto.ETARequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
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

	key := etaCacheKey(pickup, delivery, priority)

	if h.Cache != nil {
		if rec, ok, err := h.Cache.Get(r.Context(), key); err == nil && ok {
			writeJSON(w, r, http.StatusOK, dto.ETAResponse{
				DistanceKM:      rec.DistanceKM,
				DurationMinutes: rec.DurationMinutes,
				PickupTime:      rec.PickupTime,
				DeliveryTime:    rec.DeliveryTime,
				Cached:          true,
			})
			return
		} else if err != nil {
			log.Warn().Err(err).Msg("eta cache read failed")
		}
	}

	est := h.Estimator.Estimate(pickup, delivery, priority, time.Now().UTC())

	if h.Cache != nil {
		rec := ports.ETARecord{
			DistanceKM:      est.DistanceKM,
			DurationMinutes: est.DurationMinutes,
			PickupTime:      est.PickupTime,
			DeliveryTime:    est.DeliveryTime,
		}
		if err := h.Cache.Put(r.Context(), key, rec); err != nil {
			log.Warn().Err(err).Msg("eta cache write failed")
		}
	}

	writeJSON(w, r, http.StatusOK, dto.ETAResponse{
		DistanceKM:      est.DistanceKM,
		DurationMinutes: est.DurationMinutes,
		PickupTime:      est.PickupTime,
		DeliveryTime:    est.DeliveryTime,
	})
}

// Coordinates are rounded to ~11 m so that nearby requests share an
// entry without the pickup timestamp drifting more than the TTL allows.
func etaCacheKey(pickup, delivery domain.Coordinate, priority domain.Priority) string {
	return fmt.Sprintf("eta:%.4f,%.4f|%.4f,%.4f|%s",
		pickup.Lat, pickup.Lng, delivery.Lat, delivery.Lng, priority)
}
