package api

import (
	"aed-location-service/internal/api/handlers"
	"aed-location-service/internal/platform/metrics"
	"aed-location-service/internal/services"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the web composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc *services.LocationService, views *handlers.Views) http.Handler {
	mux := http.NewServeMux()

	pages := &handlers.PageHandler{Service: svc, Views: views}
	exporter := &handlers.ExportHandler{Service: svc}
	health := &handlers.HealthHandler{Store: svc}

	mux.HandleFunc("GET /{$}", pages.Index)
	mux.HandleFunc("GET /search_by_gps", pages.SearchByGPS)
	mux.HandleFunc("POST /search_by_gps", pages.SearchByGPS)
	mux.HandleFunc("GET /location/{id}", pages.Location)
	mux.HandleFunc("GET /area/{name}", pages.Area)
	mux.HandleFunc("GET /find_by_location_name", pages.FindByName)
	mux.HandleFunc("GET /export.xlsx", exporter.XLSX)
	mux.HandleFunc("GET /static/{file}", views.Static)
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("/", pages.NotFound)

	var h http.Handler = mux
	h = metricsMiddleware(h)
	h = handlers.WithAreaMemo(h)
	h = loggingMiddleware(h)
	h = securityHeaders(h)
	h = requestID(h)
	return h
}
