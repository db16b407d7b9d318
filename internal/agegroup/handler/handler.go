package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"enrolld/internal/agegroup"
	"enrolld/pkg/domainerrors"
	"enrolld/pkg/platform/httputil"
)

var errMissingRange = domainerrors.New(domainerrors.CodeMissingField, "min_age and max_age are required")

// Handler wires age-group endpoints to the registry service.
type Handler struct {
	service *agegroup.Service
	logger  *slog.Logger
}

func New(service *agegroup.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts age-group endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/age-groups", h.HandleCreate)
	r.Get("/age-groups", h.HandleList)
	r.Delete("/age-groups/{id}", h.HandleDelete)
}

type createRequest struct {
	Name   string `json:"name"`
	MinAge *int   `json:"min_age"`
	MaxAge *int   `json:"max_age"`
}

type groupResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	MinAge int    `json:"min_age"`
	MaxAge int    `json:"max_age"`
}

func toResponse(g agegroup.AgeGroup) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name, MinAge: g.MinAge, MaxAge: g.MaxAge}
}

// HandleCreate handles POST /age-groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.DecodeJSON[createRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.MinAge == nil || req.MaxAge == nil {
		httputil.WriteError(w, errMissingRange)
		return
	}

	group, err := h.service.Create(ctx, req.Name, *req.MinAge, *req.MaxAge)
	if err != nil {
		h.logger.WarnContext(ctx, "age group creation rejected", "name", req.Name, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "age group created",
		"group_id", group.ID,
		"min_age", group.MinAge,
		"max_age", group.MaxAge,
	)
	httputil.WriteJSON(w, http.StatusCreated, toResponse(group))
}

// HandleList handles GET /age-groups.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "age group listing failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, toResponse(g))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /age-groups/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "age group deleted", "group_id", id)
	w.WriteHeader(http.StatusNoContent)
}
