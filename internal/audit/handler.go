package audit

import (
	"net/http"
	"strconv"

	"github.com/writediary/writediary/internal/api"
	"github.com/writediary/writediary/internal/auth"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns the caller's recent audit entries.
// GET /api/v1/users/me/audit
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	claims := auth.GetUserClaims(r.Context())
	logs, err := h.repo.ListByUser(r.Context(), claims.UserID(), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if logs == nil {
		logs = []*Log{}
	}
	api.JSON(w, http.StatusOK, logs)
}
