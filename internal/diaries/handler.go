package diaries

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/writediary/writediary/internal/ai"
	"github.com/writediary/writediary/internal/api"
	"github.com/writediary/writediary/internal/auth"
	"github.com/writediary/writediary/internal/correction"
)

// aiTimeout bounds the whole retry budget of an AI-backed request.
const aiTimeout = 60 * time.Second

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

type CreateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Text string `json:"text" validate:"required,max=10000"`
}

type UpdateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Text string `json:"text" validate:"required,max=10000"`
}

type CorrectRequest struct {
	Mode string `json:"mode" validate:"required,oneof=beginner intermediate advanced"`
}

type ScanRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	ImageBase64 string `json:"image_base64" validate:"required"`
}

// Create stores a manually written entry.
// POST /api/v1/diaries
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	claims := auth.GetUserClaims(r.Context())
	d, err := h.svc.Create(r.Context(), claims.UserID(), req.Date, req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, d)
}

// List returns the caller's entries, optionally bounded by ?startDate and
// ?endDate. GET /api/v1/diaries
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("startDate")
	to := r.URL.Query().Get("endDate")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	claims := auth.GetUserClaims(r.Context())
	list, err := h.svc.List(r.Context(), claims.UserID(), from, to, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if list == nil {
		list = []*Diary{}
	}
	api.JSON(w, http.StatusOK, list)
}

// Get returns one entry.
// GET /api/v1/diaries/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	claims := auth.GetUserClaims(r.Context())
	d, err := h.svc.GetOwned(r.Context(), claims.UserID(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if d == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}
	api.JSON(w, http.StatusOK, d)
}

// Update edits an entry's date and text.
// PUT /api/v1/diaries/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	claims := auth.GetUserClaims(r.Context())
	d, err := h.svc.Update(r.Context(), claims.UserID(), id, req.Date, req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if d == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}
	api.JSON(w, http.StatusOK, d)
}

// Delete removes an entry and everything derived from it.
// DELETE /api/v1/diaries/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	claims := auth.GetUserClaims(r.Context())
	deleted, err := h.svc.Delete(r.Context(), claims.UserID(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if !deleted {
		api.HandleError(w, api.ErrNotFound)
		return
	}
	api.JSONMessage(w, http.StatusOK, "diary deleted")
}

// Correct runs the AI correction flow on an entry.
// POST /api/v1/diaries/{id}/correct
func (h *Handler) Correct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	var req CorrectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	claims := auth.GetUserClaims(r.Context())
	d, err := h.svc.Correct(ctx, claims.UserID(), id, correction.Mode(req.Mode))
	if err != nil {
		if errors.Is(err, ai.ErrModelUnavailable) {
			api.HandleError(w, api.ErrAIUnavailable)
			return
		}
		api.HandleError(w, err)
		return
	}
	if d == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}
	api.JSON(w, http.StatusOK, d)
}

// Scan transcribes a handwritten page and creates the entry from it.
// POST /api/v1/diaries/scan
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	claims := auth.GetUserClaims(r.Context())
	result, err := h.svc.Scan(ctx, claims.UserID(), req.Date, req.ImageBase64)
	if err != nil {
		if errors.Is(err, ai.ErrModelUnavailable) {
			api.HandleError(w, api.ErrAIUnavailable)
			return
		}
		api.HandleError(w, err)
		return
	}

	// An empty transcript is a valid outcome: no entry was created and the
	// scan was not charged.
	if result.Diary == nil {
		api.JSON(w, http.StatusOK, result)
		return
	}
	api.JSON(w, http.StatusCreated, result)
}
