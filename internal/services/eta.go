package services

import (
	"fmt"
	"time"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/geo"
)

// ETAEstimate is the result of a single pickup->delivery estimation.
type ETAEstimate struct {
	DistanceKM      float64
	DurationMinutes int
	PickupTime      time.Time
	DeliveryTime    time.Time
}

// ETAEstimator converts distances into delivery time estimates. It is
// stateless after construction and safe for concurrent use.
type ETAEstimator struct {
	speedKMH      float64
	urgentMult    float64
	highMult      float64
	bufferMinutes int
	dispatchDelay time.Duration
}

// NewETAEstimator validates its tunables up front so that a
// misconfigured speed or multiplier fails at startup, not per request.
func NewETAEstimator(speedKMH, urgentMult, highMult float64, bufferMinutes, dispatchDelayMinutes int) (*ETAEstimator, error) {
	if speedKMH <= 0 {
		return nil, fmt.Errorf("eta estimator: average speed must be > 0, got %v", speedKMH)
	}
	if highMult < 1 || urgentMult < highMult {
		return nil, fmt.Errorf("eta estimator: multipliers must satisfy urgent (%v) >= high (%v) >= 1", urgentMult, highMult)
	}
	if bufferMinutes < 0 || dispatchDelayMinutes < 0 {
		return nil, fmt.Errorf("eta estimator: buffer (%d) and dispatch delay (%d) must be >= 0", bufferMinutes, dispatchDelayMinutes)
	}

	return &ETAEstimator{
		speedKMH:      speedKMH,
		urgentMult:    urgentMult,
		highMult:      highMult,
		bufferMinutes: bufferMinutes,
		dispatchDelay: time.Duration(dispatchDelayMinutes) * time.Minute,
	}, nil
}

func (e *ETAEstimator) multiplier(p domain.Priority) float64 {
	switch p {
	case domain.PriorityUrgent:
		return e.urgentMult
	case domain.PriorityHigh:
		return e.highMult
	}
	return 1.0
}

// Estimate computes distance, duration and the pickup/delivery
// timestamps for one delivery. The priority multiplier scales travel
// time; the loading/unloading buffer is added unconditionally, so a
// zero-distance delivery still takes the buffer, never zero.
func (e *ETAEstimator) Estimate(pickup, delivery domain.Coordinate, priority domain.Priority, now time.Time) ETAEstimate {
	distanceKM := geo.DistanceKM(pickup, delivery)

	travelMinutes := (distanceKM / e.speedKMH) * 60
	travelMinutes *= e.multiplier(priority)

	totalMinutes := travelMinutes + float64(e.bufferMinutes)

	pickupTime := now.Add(e.dispatchDelay)
	deliveryTime := pickupTime.Add(time.Duration(totalMinutes * float64(time.Minute)))

	return ETAEstimate{
		DistanceKM:      distanceKM,
		DurationMinutes: int(totalMinutes),
		PickupTime:      pickupTime,
		DeliveryTime:    deliveryTime,
	}
}

// TravelMinutes converts a raw distance into priority-adjusted travel
// time, without the buffer. Used when accumulating route legs.
func (e *ETAEstimator) TravelMinutes(distanceKM float64, priority domain.Priority) float64 {
	return (distanceKM / e.speedKMH) * 60 * e.multiplier(priority)
}

// BufferMinutes is the fixed per-stop loading/unloading allowance.
func (e *ETAEstimator) BufferMinutes() int { return e.bufferMinutes }

// DispatchDelay is the fixed lead time before a driver reaches the
// first pickup.
func (e *ETAEstimator) DispatchDelay() time.Duration { return e.dispatchDelay }
