package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"oxygen-dispatch-service/internal/domain"
	"oxygen-dispatch-service/internal/ports"
)

// Postgres-backed implementation of the RouteRepository port. Stop ids
// and waypoints are stored as JSONB documents: routes are written once
// at dispatch and read back whole, never queried by waypoint.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

type waypointDoc struct {
	Kind   string     `json:"kind"`
	Lat    float64    `json:"lat"`
	Lng    float64    `json:"lng"`
	StopID *uuid.UUID `json:"stop_id,omitempty"`
}

func (r *PostgresRouteRepository) Create(ctx context.Context, route *domain.Route) error {
	if r.DB == nil {
		return errors.New("route repository: DB is nil")
	}

	stopIDs, err := json.Marshal(route.StopIDs)
	if err != nil {
		return fmt.Errorf("create route %s: marshal stop ids: %w", route.ID, err)
	}

	docs := make([]waypointDoc, 0, len(route.Waypoints))
	for _, wp := range route.Waypoints {
		docs = append(docs, waypointDoc{
			Kind:   string(wp.Kind),
			Lat:    wp.Position.Lat,
			Lng:    wp.Position.Lng,
			StopID: wp.StopID,
		})
	}
	waypoints, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("create route %s: marshal waypoints: %w", route.ID, err)
	}

	query := `
	INSERT INTO routes (
		id, driver_id, name, stop_ids, waypoints,
		total_distance_km, estimated_duration_minutes,
		status, started_at, completed_at, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = r.DB.ExecContext(ctx, query,
		route.ID, route.DriverID, route.Name, stopIDs, waypoints,
		route.TotalDistanceKM, route.EstimatedDurationMinutes,
		route.Status, route.StartedAt, route.CompletedAt, route.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create route %s: %w", route.ID, err)
	}
	return nil
}

const routeColumns = `
	id, driver_id, name, stop_ids, waypoints,
	total_distance_km, estimated_duration_minutes,
	status, started_at, completed_at, created_at`

func (r *PostgresRouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1;`

	route, err := scanRoute(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}
	return route, nil
}

func (r *PostgresRouteRepository) ListByDriver(ctx context.Context, driverID uuid.UUID, status domain.RouteStatus) ([]*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE driver_id = $1`
	args := []any{driverID}

	if status != "" {
		args = append(args, status)
		query += ` AND status = $2`
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list routes for driver %s: %w", driverID, err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 8)
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route row: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("route row iteration: %w", err)
	}
	return routes, nil
}

func (r *PostgresRouteRepository) UpdateStatus(ctx context.Context, route *domain.Route) error {
	query := `
	UPDATE routes
	SET status = $2, started_at = $3, completed_at = $4
	WHERE id = $1;
	`
	res, err := r.DB.ExecContext(ctx, query, route.ID, route.Status, route.StartedAt, route.CompletedAt)
	if err != nil {
		return fmt.Errorf("update route status %s: %w", route.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update route status %s: %w", route.ID, ports.ErrNotFound)
	}
	return nil
}

func scanRoute(row rowScanner) (*domain.Route, error) {
	var (
		route     domain.Route
		stopIDs   []byte
		waypoints []byte
	)
	err := row.Scan(
		&route.ID, &route.DriverID, &route.Name, &stopIDs, &waypoints,
		&route.TotalDistanceKM, &route.EstimatedDurationMinutes,
		&route.Status, &route.StartedAt, &route.CompletedAt, &route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(stopIDs, &route.StopIDs); err != nil {
		return nil, fmt.Errorf("unmarshal stop ids: %w", err)
	}

	var docs []waypointDoc
	if err := json.Unmarshal(waypoints, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal waypoints: %w", err)
	}
	route.Waypoints = make([]domain.Waypoint, 0, len(docs))
	for _, doc := range docs {
		route.Waypoints = append(route.Waypoints, domain.Waypoint{
			Kind:     domain.WaypointKind(doc.Kind),
			Position: domain.Coordinate{Lat: doc.Lat, Lng: doc.Lng},
			StopID:   doc.StopID,
		})
	}

	return &route, nil
}
