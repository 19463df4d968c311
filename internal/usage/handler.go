package usage

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/writediary/writediary/internal/api"
	"github.com/writediary/writediary/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get returns today's usage snapshot for one feature.
// GET /api/v1/usage/{feature}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	feature := Feature(chi.URLParam(r, "feature"))
	if !feature.Valid() {
		api.HandleError(w, api.NewBadRequestError("unknown feature"))
		return
	}

	claims := auth.GetUserClaims(r.Context())
	snapshot, err := h.svc.Snapshot(r.Context(), claims.UserID(), feature)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, snapshot)
}

// GrantBonus awards one bonus unit after the client completes a reward
// action. POST /api/v1/usage/{feature}/bonus
func (h *Handler) GrantBonus(w http.ResponseWriter, r *http.Request) {
	feature := Feature(chi.URLParam(r, "feature"))
	if !feature.Valid() {
		api.HandleError(w, api.NewBadRequestError("unknown feature"))
		return
	}

	claims := auth.GetUserClaims(r.Context())
	grant, err := h.svc.GrantBonus(r.Context(), claims.UserID(), feature)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, grant)
}
