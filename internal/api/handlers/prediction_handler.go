package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/healthsphere/noshow/backend/internal/domain/entities"
	"github.com/healthsphere/noshow/backend/internal/domain/repositories"
	"github.com/healthsphere/noshow/backend/internal/infrastructure/observability"
)

// PredictionProvider defines the prediction operations the handler exposes
type PredictionProvider interface {
	PredictForVisit(ctx context.Context, patientID string, bookingDate, scheduledDate time.Time, reminderSent bool) (*entities.Prediction, error)
	PredictAdHoc(ctx context.Context, patientID string, bookingDate, candidateDate time.Time, reminderSent bool) (*entities.Prediction, error)
}

// OutcomeRecorder receives newly known visit outcomes
type OutcomeRecorder interface {
	RecordOutcome()
}

// PredictionHandler handles prediction requests
type PredictionHandler struct {
	service  PredictionProvider
	visits   repositories.VisitRepository
	recorder OutcomeRecorder
	metrics  *observability.Metrics
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(
	service PredictionProvider,
	visits repositories.VisitRepository,
	recorder OutcomeRecorder,
	metrics *observability.Metrics,
) *PredictionHandler {
	return &PredictionHandler{
		service:  service,
		visits:   visits,
		recorder: recorder,
		metrics:  metrics,
	}
}

type predictVisitRequest struct {
	VisitID       string    `json:"visit_id"`
	PatientID     string    `json:"patient_id"`
	BookingDate   time.Time `json:"booking_date"`
	ScheduledDate time.Time `json:"scheduled_date"`
	ReminderSent  bool      `json:"reminder_sent"`
}

// PredictVisit handles POST /api/predictions/visit: it scores a visit being
// created and embeds the prediction into the record. If prediction fails the
// request fails; a visit is never stored without a truthful prediction.
func (h *PredictionHandler) PredictVisit(w http.ResponseWriter, r *http.Request) {
	var req predictVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.VisitID == "" || req.PatientID == "" {
		respondWithError(w, http.StatusBadRequest, "visit_id and patient_id are required")
		return
	}

	prediction, err := h.service.PredictForVisit(r.Context(), req.PatientID, req.BookingDate, req.ScheduledDate, req.ReminderSent)
	if err != nil {
		h.countFailure(r.Context())
		respondWithAppError(w, err)
		return
	}

	if err := h.visits.EmbedPrediction(r.Context(), req.VisitID, prediction); err != nil {
		h.countFailure(r.Context())
		respondWithAppError(w, err)
		return
	}

	h.countServed(r.Context())
	respondWithJSON(w, http.StatusCreated, prediction)
}

type whatIfRequest struct {
	PatientID     string    `json:"patient_id"`
	BookingDate   time.Time `json:"booking_date"`
	CandidateDate time.Time `json:"candidate_date"`
	ReminderSent  bool      `json:"reminder_sent"`
}

// WhatIf handles POST /api/predictions/what-if: an exploratory prediction
// that persists nothing.
func (h *PredictionHandler) WhatIf(w http.ResponseWriter, r *http.Request) {
	var req whatIfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.PatientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	bookingDate := req.BookingDate
	if bookingDate.IsZero() {
		bookingDate = time.Now().UTC()
	}

	prediction, err := h.service.PredictAdHoc(r.Context(), req.PatientID, bookingDate, req.CandidateDate, req.ReminderSent)
	if err != nil {
		h.countFailure(r.Context())
		respondWithAppError(w, err)
		return
	}

	h.countServed(r.Context())
	respondWithJSON(w, http.StatusOK, prediction)
}

// RecordOutcome handles POST /api/outcomes, called by the record layer when
// a visit transitions to done with a known showed-up value.
func (h *PredictionHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	h.recorder.RecordOutcome()
	if h.metrics != nil {
		h.metrics.OutcomesRecorded.Add(r.Context(), 1)
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func (h *PredictionHandler) countServed(ctx context.Context) {
	if h.metrics != nil {
		h.metrics.PredictionsServed.Add(ctx, 1)
	}
}

func (h *PredictionHandler) countFailure(ctx context.Context) {
	if h.metrics != nil {
		h.metrics.PredictionsFailed.Add(ctx, 1)
	}
}
