package api

import (
	"net/http"

	"oxygen-dispatch-service/internal/api/handlers"
	"oxygen-dispatch-service/internal/ports"
	"oxygen-dispatch-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	deliveries ports.DeliveryRepository,
	routes ports.RouteRepository,
	zones ports.ZoneRepository,
	drivers ports.DriverRepository,
	dispatcher *services.Dispatcher,
	estimator *services.ETAEstimator,
	etaCache ports.ETACache,
	events ports.EventPublisher,
	driverSearchRadiusKM float64,
) http.Handler {
	mux := http.NewServeMux()

	deliveryHandler := &handlers.DeliveryHandler{Repo: deliveries, Events: events}
	etaHandler := &handlers.ETAHandler{Estimator: estimator, Cache: etaCache}
	routeHandler := &handlers.RouteHandler{Dispatcher: dispatcher, Repo: routes}
	zoneHandler := &handlers.ZoneHandler{Repo: zones, Events: events}
	driverHandler := &handlers.DriverHandler{Repo: drivers, SearchRadiusKM: driverSearchRadiusKM}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /deliveries", deliveryHandler.Create)
	mux.HandleFunc("GET /deliveries", deliveryHandler.List)
	mux.HandleFunc("GET /deliveries/{id}", deliveryHandler.Get)
	mux.HandleFunc("POST /deliveries/{id}/status", deliveryHandler.UpdateStatus)
	mux.HandleFunc("GET /deliveries/{id}/tracking", deliveryHandler.Tracking)

	mux.HandleFunc("POST /eta", etaHandler.Estimate)

	mux.HandleFunc("POST /drivers", driverHandler.Create)
	mux.HandleFunc("GET /drivers", driverHandler.List)
	mux.HandleFunc("GET /drivers/{id}", driverHandler.Get)
	mux.HandleFunc("POST /drivers/{id}/location", driverHandler.UpdateLocation)
	mux.HandleFunc("POST /drivers/{id}/status", driverHandler.UpdateStatus)
	mux.HandleFunc("POST /drivers/nearest", driverHandler.Nearest)

	mux.HandleFunc("POST /routes", routeHandler.Plan)
	mux.HandleFunc("GET /routes", routeHandler.ListByDriver)
	mux.HandleFunc("GET /routes/{id}", routeHandler.Get)
	mux.HandleFunc("POST /routes/{id}/start", routeHandler.Start)
	mux.HandleFunc("POST /routes/{id}/complete", routeHandler.Complete)

	mux.HandleFunc("POST /zones", zoneHandler.Create)
	mux.HandleFunc("GET /zones", zoneHandler.List)
	mux.HandleFunc("POST /zones/{id}/activate", zoneHandler.Activate)
	mux.HandleFunc("POST /zones/{id}/deactivate", zoneHandler.Deactivate)
	mux.HandleFunc("POST /zones/check", zoneHandler.Check)

	return loggingMiddleware(mux)
}
