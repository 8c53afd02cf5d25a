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

// Postgres-backed implementation of the ZoneRepository port.
type PostgresZoneRepository struct{ DB *sql.DB }

func NewPostgresZoneRepository(db *sql.DB) *PostgresZoneRepository {
	return &PostgresZoneRepository{DB: db}
}

const zoneColumns = `
	id, name, description, center_lat, center_lng, radius_km,
	severity, is_active, alert_message, created_by,
	activated_at, deactivated_at, created_at`

func (r *PostgresZoneRepository) Create(ctx context.Context, z *domain.EmergencyZone) error {
	if r.DB == nil {
		return errors.New("zone repository: DB is nil")
	}

	query := `
	INSERT INTO emergency_zones (` + zoneColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.DB.ExecContext(ctx, query,
		z.ID, z.Name, z.Description, z.Center.Lat, z.Center.Lng, z.RadiusKM,
		z.Severity, z.IsActive, z.AlertMessage, z.CreatedBy,
		z.ActivatedAt, z.DeactivatedAt, z.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create zone %s: %w", z.ID, err)
	}
	return nil
}

func (r *PostgresZoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmergencyZone, error) {
	query := `SELECT ` + zoneColumns + ` FROM emergency_zones WHERE id = $1;`

	z, err := scanZone(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get zone %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get zone %s: %w", id, err)
	}
	return z, nil
}

func (r *PostgresZoneRepository) List(ctx context.Context, activeOnly bool) ([]*domain.EmergencyZone, error) {
	query := `SELECT ` + zoneColumns + ` FROM emergency_zones`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	zones := make([]*domain.EmergencyZone, 0, 16)
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan zone row: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("zone row iteration: %w", err)
	}
	return zones, nil
}

func (r *PostgresZoneRepository) SetActive(ctx context.Context, z *domain.EmergencyZone) error {
	query := `
	UPDATE emergency_zones
	SET is_active = $2, alert_message = $3, activated_at = $4, deactivated_at = $5
	WHERE id = $1;
	`
	res, err := r.DB.ExecContext(ctx, query, z.ID, z.IsActive, z.AlertMessage, z.ActivatedAt, z.DeactivatedAt)
	if err != nil {
		return fmt.Errorf("set zone active %s: %w", z.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set zone active %s: %w", z.ID, ports.ErrNotFound)
	}
	return nil
}

func scanZone(row rowScanner) (*domain.EmergencyZone, error) {
	var z domain.EmergencyZone
	err := row.Scan(
		&z.ID, &z.Name, &z.Description, &z.Center.Lat, &z.Center.Lng, &z.RadiusKM,
		&z.Severity, &z.IsActive, &z.AlertMessage, &z.CreatedBy,
		&z.ActivatedAt, &z.DeactivatedAt, &z.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &z, nil
}
