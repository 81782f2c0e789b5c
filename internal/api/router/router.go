package router

import (
	"encoding/json"
	"net/http"

	"olexparser/internal/api/handler"
	"olexparser/internal/api/middleware"
	"olexparser/internal/core/service"
)

func NewRouter(caseService service.CaseService, jwtSecret string) http.Handler {
	// Initialize handlers
	caseHandler := handler.NewCaseHandler(caseService)
	authMiddleware := middleware.NewAuthMiddleware(jwtSecret)

	// Create router
	mux := http.NewServeMux()

	// Add middleware chain
	withMiddleware := func(handler http.Handler) http.Handler {
		return middleware.CORSMiddleware(
			middleware.LoggingMiddleware(
				authMiddleware.Authenticate(handler),
			),
		)
	}

	// Health check endpoint, reachable without a token
	mux.Handle("/health", middleware.CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})))

	// Case routes
	mux.Handle("/api/cases", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			caseHandler.Analyze(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/api/cases/list", withMiddleware(getOnly(caseHandler.GetReports)))
	mux.Handle("/api/cases/get", withMiddleware(getOnly(caseHandler.GetReport)))
	mux.Handle("/api/cases/gpx", withMiddleware(getOnly(
		caseHandler.Export(service.FormatGPX, "application/gpx+xml"))))
	mux.Handle("/api/cases/geojson", withMiddleware(getOnly(
		caseHandler.Export(service.FormatGeoJSON, "application/geo+json"))))

	return mux
}

func getOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}
