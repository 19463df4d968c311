package reviewcards

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/writediary/writediary/internal/api"
	"github.com/writediary/writediary/internal/auth"
)

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
	DiaryID             string `json:"diary_id" validate:"required,uuid4"`
	SelectedCorrections []int  `json:"selected_corrections" validate:"required,min=1"`
}

type CreateResponse struct {
	Created int     `json:"created"`
	Cards   []*Card `json:"cards"`
}

// Create builds cards from selected corrections of a diary.
// POST /api/v1/review-cards
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

	diaryID, err := uuid.Parse(req.DiaryID)
	if err != nil {
		api.HandleError(w, api.NewValidationError("invalid diary_id"))
		return
	}

	claims := auth.GetUserClaims(r.Context())
	cards, err := h.svc.CreateFromCorrections(r.Context(), claims.UserID(), diaryID, req.SelectedCorrections)
	if err != nil {
		switch {
		case errors.Is(err, ErrDiaryNotFound):
			api.HandleError(w, api.ErrNotFound)
		case errors.Is(err, ErrNoCorrections):
			api.HandleError(w, api.NewBadRequestError("diary has no corrections, run a correction first"))
		default:
			api.HandleError(w, err)
		}
		return
	}

	api.JSON(w, http.StatusCreated, CreateResponse{Created: len(cards), Cards: cards})
}

// List returns the caller's cards, optionally filtered by ?tag.
// GET /api/v1/review-cards
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	claims := auth.GetUserClaims(r.Context())
	cards, err := h.svc.List(r.Context(), claims.UserID(), tag, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if cards == nil {
		cards = []*Card{}
	}
	api.JSON(w, http.StatusOK, cards)
}

// Delete removes one card.
// DELETE /api/v1/review-cards/{id}
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
	api.JSONMessage(w, http.StatusOK, "review card deleted")
}
