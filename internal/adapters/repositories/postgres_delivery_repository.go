package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/ports"
)

// Postgres-backed implementation of the DeliveryRepository port.
type PostgresDeliveryRepository struct{ DB *sql.DB }

func NewPostgresDeliveryRepository(db *sql.DB) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{DB: db}
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Unset limits take the default; oversized ones are capped, not reset.
func clampLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

const deliveryColumns = `
	id, order_id, customer_id, driver_id,
	cylinder_size, quantity, priority, status,
	pickup_address, pickup_lat, pickup_lng,
	delivery_address, delivery_lat, delivery_lng,
	distance_km,
	estimated_pickup_time, estimated_delivery_time,
	actual_pickup_time, actual_delivery_time,
	special_instructions, created_at, updated_at`

// Create inserts the delivery together with its initial tracking row.
func (r *PostgresDeliveryRepository) Create(ctx context.Context, d *domain.DeliveryStop) error {
	if r.DB == nil {
		return errors.New("delivery repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create delivery %s: begin tx: %w", d.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO deliveries (` + deliveryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	if _, err := tx.ExecContext(ctx, query,
		d.ID, d.OrderID, d.CustomerID, d.DriverID,
		d.CylinderSize, d.Quantity, d.Priority, d.Status,
		d.PickupAddress, d.Pickup.Lat, d.Pickup.Lng,
		d.DeliveryAddress, d.Delivery.Lat, d.Delivery.Lng,
		d.DistanceKM,
		d.EstimatedPickupTime, d.EstimatedDeliveryTime,
		d.ActualPickupTime, d.ActualDeliveryTime,
		d.SpecialInstructions, d.CreatedAt, d.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create delivery %s: %w", d.ID, err)
	}

	trackingQuery := `
	INSERT INTO delivery_tracking (delivery_id, status, updated_by, created_at)
	VALUES ($1, $2, 'system', $3);
	`
	if _, err := tx.ExecContext(ctx, trackingQuery, d.ID, d.Status, d.CreatedAt); err != nil {
		return fmt.Errorf("create delivery %s: insert tracking: %w", d.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create delivery %s: commit tx: %w", d.ID, err)
	}
	return nil
}

func (r *PostgresDeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryStop, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1;`

	d, err := scanDelivery(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get delivery %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get delivery %s: %w", id, err)
	}
	return d, nil
}

func (r *PostgresDeliveryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.DeliveryStop, error) {
	if len(ids) == 0 {
		return []*domain.DeliveryStop{}, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}

	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY created_at, id;`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get deliveries by ids: %w", err)
	}
	defer rows.Close()

	return collectDeliveries(rows)
}

func (r *PostgresDeliveryRepository) List(ctx context.Context, filters ports.DeliveryFilters) ([]*domain.DeliveryStop, error) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters.Status != "" {
		add("status = $%d", filters.Status)
	}
	if filters.Priority != "" {
		add("priority = $%d", filters.Priority)
	}
	if filters.DriverID != nil {
		add("driver_id = $%d", *filters.DriverID)
	}

	query := `SELECT ` + deliveryColumns + ` FROM deliveries`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	args = append(args, clampLimit(filters.Limit))
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	query += ";"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	return collectDeliveries(rows)
}

// UpdateStatus persists the delivery's current state and appends a
// tracking row in the same transaction.
func (r *PostgresDeliveryRepository) UpdateStatus(ctx context.Context, d *domain.DeliveryStop, updatedBy string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update delivery status: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updateQuery := `
	UPDATE deliveries
	SET status = $2,
	    actual_pickup_time = $3,
	    actual_delivery_time = $4,
	    updated_at = $5
	WHERE id = $1;
	`
	res, err := tx.ExecContext(ctx, updateQuery,
		d.ID, d.Status, d.ActualPickupTime, d.ActualDeliveryTime, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update delivery status %s: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update delivery status %s: %w", d.ID, ports.ErrNotFound)
	}

	trackingQuery := `
	INSERT INTO delivery_tracking (delivery_id, status, updated_by, created_at)
	VALUES ($1, $2, $3, $4);
	`
	if _, err := tx.ExecContext(ctx, trackingQuery, d.ID, d.Status, updatedBy, d.UpdatedAt); err != nil {
		return fmt.Errorf("insert tracking for %s: %w", d.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update delivery status %s: commit tx: %w", d.ID, err)
	}
	return nil
}

func (r *PostgresDeliveryRepository) SetAssignment(ctx context.Context, d *domain.DeliveryStop) error {
	query := `
	UPDATE deliveries
	SET driver_id = $2,
	    status = $3,
	    estimated_pickup_time = $4,
	    estimated_delivery_time = $5,
	    updated_at = $6
	WHERE id = $1;
	`
	res, err := r.DB.ExecContext(ctx, query,
		d.ID, d.DriverID, d.Status, d.EstimatedPickupTime, d.EstimatedDeliveryTime, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set assignment for %s: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set assignment for %s: %w", d.ID, ports.ErrNotFound)
	}
	return nil
}

func (r *PostgresDeliveryRepository) ListTracking(ctx context.Context, deliveryID uuid.UUID) ([]ports.TrackingEntry, error) {
	query := `
	SELECT delivery_id, status, updated_by, created_at
	FROM delivery_tracking
	WHERE delivery_id = $1
	ORDER BY created_at, id;
	`
	rows, err := r.DB.QueryContext(ctx, query, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("list tracking for %s: %w", deliveryID, err)
	}
	defer rows.Close()

	entries := make([]ports.TrackingEntry, 0, 8)
	for rows.Next() {
		var e ports.TrackingEntry
		if err := rows.Scan(&e.DeliveryID, &e.Status, &e.UpdatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tracking row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tracking row iteration: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (*domain.DeliveryStop, error) {
	var d domain.DeliveryStop
	err := row.Scan(
		&d.ID, &d.OrderID, &d.CustomerID, &d.DriverID,
		&d.CylinderSize, &d.Quantity, &d.Priority, &d.Status,
		&d.PickupAddress, &d.Pickup.Lat, &d.Pickup.Lng,
		&d.DeliveryAddress, &d.Delivery.Lat, &d.Delivery.Lng,
		&d.DistanceKM,
		&d.EstimatedPickupTime, &d.EstimatedDeliveryTime,
		&d.ActualPickupTime, &d.ActualDeliveryTime,
		&d.SpecialInstructions, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDeliveries(rows *sql.Rows) ([]*domain.DeliveryStop, error) {
	deliveries := make([]*domain.DeliveryStop, 0, 16)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery row: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("delivery row iteration: %w", err)
	}
	return deliveries, nil
}
