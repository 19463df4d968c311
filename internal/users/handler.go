package users

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/writediary/writediary/internal/api"
	"github.com/writediary/writediary/internal/auth"
	"github.com/writediary/writediary/internal/correction"
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

type UpdateProfileRequest struct {
	DisplayName    string `json:"display_name" validate:"max=100"`
	TargetLanguage string `json:"target_language" validate:"required,oneof=english spanish chinese japanese korean french german italian"`
	NativeLanguage string `json:"native_language" validate:"required,oneof=english spanish chinese japanese korean french german italian"`
}

// Me returns the caller's profile, creating it on first request.
// GET /api/v1/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	user, err := h.svc.Provision(r.Context(), claims.UserID(), claims.Email)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, user)
}

// UpdateMe changes the caller's display name and language pair.
// PUT /api/v1/users/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	claims := auth.GetUserClaims(r.Context())
	user, err := h.svc.UpdateProfile(r.Context(), claims.UserID(), req.DisplayName,
		correction.Language(req.TargetLanguage), correction.Language(req.NativeLanguage))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}
	api.JSON(w, http.StatusOK, user)
}

// DeleteMe erases the caller's account and everything stored for it.
// DELETE /api/v1/users/me
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if err := h.svc.DeleteAccount(r.Context(), claims.UserID()); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSONMessage(w, http.StatusOK, "account deleted")
}
