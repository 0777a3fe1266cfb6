package routes

import (
	"net/http"

	"github.com/healthsphere/noshow/backend/internal/api/handlers"
	"github.com/healthsphere/noshow/backend/internal/api/middleware"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	predictionHandler *handlers.PredictionHandler
	modelHandler      *handlers.ModelHandler
}

// NewRouter creates a new router
func NewRouter(
	predictionHandler *handlers.PredictionHandler,
	modelHandler *handlers.ModelHandler,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		predictionHandler: predictionHandler,
		modelHandler:      modelHandler,
	}
}

// RegisterRoutes registers all API routes
func (r *Router) RegisterRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prediction endpoints
	r.mux.HandleFunc("POST /api/predictions/visit", r.predictionHandler.PredictVisit)
	r.mux.HandleFunc("POST /api/predictions/what-if", r.predictionHandler.WhatIf)

	// Outcome recording (called when a visit transitions to done)
	r.mux.HandleFunc("POST /api/outcomes", r.predictionHandler.RecordOutcome)

	// Operator-facing model views
	r.mux.HandleFunc("GET /api/model/status", r.modelHandler.Status)
	r.mux.HandleFunc("GET /api/model/versions", r.modelHandler.ListVersions)
	r.mux.HandleFunc("GET /api/training/jobs", r.modelHandler.ListJobs)

	// Administrative retrain-now
	r.mux.HandleFunc("POST /api/admin/retrain", r.modelHandler.Retrain)

	handler := middleware.LoggingMiddleware(r.mux)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
