package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"enrolld/internal/enrollment"
	"enrolld/pkg/platform/httputil"
)

// Handler exposes the submission gateway over HTTP. Submission is the only
// synchronous step; the returned id is a ticket for polling status.
type Handler struct {
	service *enrollment.Service
	logger  *slog.Logger
}

func New(service *enrollment.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts enrollment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/enrollments", h.HandleSubmit)
	r.Get("/enrollments/{id}", h.HandleStatus)
}

type statusResponse struct {
	EnrollmentID   string    `json:"enrollment_id"`
	Status         string    `json:"status"`
	ErrorReason    string    `json:"error_reason,omitempty"`
	MatchedGroupID string    `json:"matched_group_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HandleSubmit handles POST /enrollments.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.DecodeJSON[enrollment.SubmitRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Submit(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "enrollment submission rejected", "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "enrollment accepted", "enrollment_id", result.EnrollmentID)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// HandleStatus handles GET /enrollments/{id}.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		EnrollmentID:   e.ID,
		Status:         string(e.Status),
		ErrorReason:    e.ErrorReason,
		MatchedGroupID: e.MatchedGroupID,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	})
}
