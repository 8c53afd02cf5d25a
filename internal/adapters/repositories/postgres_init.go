package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"oxygen-dispatch-service/internal/domain"
)

// Initialize the Postgres schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id UUID PRIMARY KEY,
		order_id TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL,
		driver_id UUID,
		cylinder_size TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		pickup_address TEXT NOT NULL,
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lng DOUBLE PRECISION NOT NULL,
		delivery_address TEXT NOT NULL,
		delivery_lat DOUBLE PRECISION NOT NULL,
		delivery_lng DOUBLE PRECISION NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
		estimated_pickup_time TIMESTAMPTZ,
		estimated_delivery_time TIMESTAMPTZ,
		actual_pickup_time TIMESTAMPTZ,
		actual_delivery_time TIMESTAMPTZ,
		special_instructions TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	createTrackingQuery := `
	CREATE TABLE IF NOT EXISTS delivery_tracking (
		id BIGSERIAL PRIMARY KEY,
		delivery_id UUID NOT NULL REFERENCES deliveries(id),
		status TEXT NOT NULL,
		updated_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY,
		driver_id UUID NOT NULL,
		name TEXT NOT NULL,
		stop_ids JSONB NOT NULL,
		waypoints JSONB NOT NULL,
		total_distance_km DOUBLE PRECISION NOT NULL,
		estimated_duration_minutes INTEGER NOT NULL,
		status TEXT NOT NULL,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createZonesQuery := `
	CREATE TABLE IF NOT EXISTS emergency_zones (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		center_lat DOUBLE PRECISION NOT NULL,
		center_lng DOUBLE PRECISION NOT NULL,
		radius_km DOUBLE PRECISION NOT NULL,
		severity TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		alert_message TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		activated_at TIMESTAMPTZ,
		deactivated_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		vehicle_plate TEXT NOT NULL,
		vehicle_capacity INTEGER NOT NULL,
		location_lat DOUBLE PRECISION,
		location_lng DOUBLE PRECISION,
		location_updated_at TIMESTAMPTZ,
		status TEXT NOT NULL,
		rating DOUBLE PRECISION NOT NULL DEFAULT 5.0,
		total_deliveries INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexesQuery := `
	CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status);
	CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers(status);
	CREATE INDEX IF NOT EXISTS idx_deliveries_driver ON deliveries(driver_id);
	CREATE INDEX IF NOT EXISTS idx_tracking_delivery ON delivery_tracking(delivery_id);
	CREATE INDEX IF NOT EXISTS idx_routes_driver ON routes(driver_id);
	CREATE INDEX IF NOT EXISTS idx_zones_active ON emergency_zones(is_active);
	`

	statements := []string{
		createDeliveriesQuery,
		createTrackingQuery,
		createRoutesQuery,
		createZonesQuery,
		createDriversQuery,
		createIndexesQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DeliverySeed struct {
	OrderID         string  `json:"order_id"`
	CustomerID      string  `json:"customer_id"`
	CylinderSize    string  `json:"cylinder_size"`
	Quantity        int     `json:"quantity"`
	Priority        string  `json:"priority"`
	PickupAddress   string  `json:"pickup_address"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	DeliveryAddress string  `json:"delivery_address"`
	DeliveryLat     float64 `json:"delivery_lat"`
	DeliveryLng     float64 `json:"delivery_lng"`
}

// Populate the deliveries table with demo data from a JSON file.
// Existing orders are left untouched.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed deliveries: read %q: %w", jsonPath, err)
	}

	var data []DeliverySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed deliveries: parse json: %w", err)
	}

	for i, item := range data {
		if strings.TrimSpace(item.OrderID) == "" {
			return fmt.Errorf("seed deliveries: item at index %d: order_id cannot be empty", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("seed deliveries: order %q: quantity must be > 0", item.OrderID)
		}
		if _, err := domain.ParsePriority(item.Priority); err != nil {
			return fmt.Errorf("seed deliveries: order %q: %w", item.OrderID, err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed deliveries: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO deliveries (
		id, order_id, customer_id, cylinder_size, quantity, priority, status,
		pickup_address, pickup_lat, pickup_lng,
		delivery_address, delivery_lat, delivery_lng,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, 'PENDING', $7, $8, $9, $10, $11, $12, $13, $13)
	ON CONFLICT (order_id) DO NOTHING;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed deliveries: prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, d := range data {
		if _, err := stmt.Exec(
			uuid.New(), d.OrderID, d.CustomerID, d.CylinderSize, d.Quantity, d.Priority,
			d.PickupAddress, d.PickupLat, d.PickupLng,
			d.DeliveryAddress, d.DeliveryLat, d.DeliveryLng,
			now,
		); err != nil {
			return fmt.Errorf("seed deliveries: insert order %q: %w", d.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed deliveries: commit tx: %w", err)
	}

	return nil
}
