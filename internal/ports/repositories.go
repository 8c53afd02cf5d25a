package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"oxygen-dispatch-service/internal/domain"
)

// Returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Filters for delivery listing. Zero values mean "no filter".
type DeliveryFilters struct {
	Status   domain.DeliveryStatus
	Priority domain.Priority
	DriverID *uuid.UUID
	Limit    int
	Offset   int
}

// Port: boundary for DeliveryStop persistence. The geospatial core never
// writes persisted state directly; callers persist what it returns.
type DeliveryRepository interface {
	Create(ctx context.Context, d *domain.DeliveryStop) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryStop, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.DeliveryStop, error)
	List(ctx context.Context, filters DeliveryFilters) ([]*domain.DeliveryStop, error)
	// UpdateStatus persists a status transition and appends a tracking row.
	UpdateStatus(ctx context.Context, d *domain.DeliveryStop, updatedBy string) error
	// SetAssignment persists driver assignment and ETA fields set at dispatch.
	SetAssignment(ctx context.Context, d *domain.DeliveryStop) error
	// ListTracking returns the status history of one delivery, oldest first.
	ListTracking(ctx context.Context, deliveryID uuid.UUID) ([]TrackingEntry, error)
}

type DriverRepository interface {
	Create(ctx context.Context, d *domain.Driver) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	// List returns drivers, optionally filtered by status ("" means all).
	List(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error)
	UpdateLocation(ctx context.Context, d *domain.Driver) error
	// SetStatus persists status and the delivery counter.
	SetStatus(ctx context.Context, d *domain.Driver) error
}

type RouteRepository interface {
	Create(ctx context.Context, r *domain.Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Route, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, status domain.RouteStatus) ([]*domain.Route, error)
	UpdateStatus(ctx context.Context, r *domain.Route) error
}

type ZoneRepository interface {
	Create(ctx context.Context, z *domain.EmergencyZone) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmergencyZone, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.EmergencyZone, error)
	SetActive(ctx context.Context, z *domain.EmergencyZone) error
}

// Tracking rows record every status change of a delivery; written by
// DeliveryRepository.UpdateStatus.
type TrackingEntry struct {
	DeliveryID uuid.UUID
	Status     domain.DeliveryStatus
	UpdatedBy  string
	CreatedAt  time.Time
}
