package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/ports"
)

// Postgres-backed implementation of the DriverRepository port.
type PostgresDriverRepository struct{ DB *sql.DB }

func NewPostgresDriverRepository(db *sql.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{DB: db}
}

const driverColumns = `
	id, name, phone, vehicle_type, vehicle_plate, vehicle_capacity,
	location_lat, location_lng, location_updated_at,
	status, rating, total_deliveries, created_at, updated_at`

func (r *PostgresDriverRepository) Create(ctx context.Context, d *domain.Driver) error {
	if r.DB == nil {
		return errors.New("driver repository: DB is nil")
	}

	var lat, lng *float64
	if d.Location != nil {
		lat, lng = &d.Location.Lat, &d.Location.Lng
	}

	query := `
	INSERT INTO drivers (` + driverColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.DB.ExecContext(ctx, query,
		d.ID, d.Name, d.Phone, d.VehicleType, d.VehiclePlate, d.VehicleCapacity,
		lat, lng, d.LocationUpdatedAt,
		d.Status, d.Rating, d.TotalDeliveries, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create driver %s: %w", d.ID, err)
	}
	return nil
}

func (r *PostgresDriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1;`

	d, err := scanDriver(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get driver %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get driver %s: %w", id, err)
	}
	return d, nil
}

func (r *PostgresDriverRepository) List(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers`
	args := []any{}

	if status != "" {
		args = append(args, status)
		query += ` WHERE status = $1`
	}
	query += ` ORDER BY created_at, id;`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 16)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("driver row iteration: %w", err)
	}
	return drivers, nil
}

func (r *PostgresDriverRepository) UpdateLocation(ctx context.Context, d *domain.Driver) error {
	if d.Location == nil {
		return fmt.Errorf("update driver location %s: location is nil", d.ID)
	}

	query := `
	UPDATE drivers
	SET location_lat = $2, location_lng = $3, location_updated_at = $4, updated_at = $5
	WHERE id = $1;
	`
	res, err := r.DB.ExecContext(ctx, query,
		d.ID, d.Location.Lat, d.Location.Lng, d.LocationUpdatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update driver location %s: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update driver location %s: %w", d.ID, ports.ErrNotFound)
	}
	return nil
}

func (r *PostgresDriverRepository) SetStatus(ctx context.Context, d *domain.Driver) error {
	query := `
	UPDATE drivers
	SET status = $2, total_deliveries = $3, updated_at = $4
	WHERE id = $1;
	`
	res, err := r.DB.ExecContext(ctx, query, d.ID, d.Status, d.TotalDeliveries, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set driver status %s: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set driver status %s: %w", d.ID, ports.ErrNotFound)
	}
	return nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var (
		d        domain.Driver
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.VehicleType, &d.VehiclePlate, &d.VehicleCapacity,
		&lat, &lng, &d.LocationUpdatedAt,
		&d.Status, &d.Rating, &d.TotalDeliveries, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		d.Location = &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &d, nil
}
