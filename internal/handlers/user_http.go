package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

// SessionInvalidator drops cached workspaces so profile changes apply on
// the next request.
type SessionInvalidator interface {
	Invalidate(userID string)
}

type UserHTTP struct {
	repo     repository.ProfileRepository
	sessions SessionInvalidator
}

func NewUserHTTP(r repository.ProfileRepository, s SessionInvalidator) *UserHTTP {
	return &UserHTTP{repo: r, sessions: s}
}

// GET /api/users?q=&role=&active=&limit=&offset=
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		limit := utils.QueryInt(qv, "limit", 20)
		if limit <= 0 || limit > maxPageSize {
			limit = 20
		}
		offset := utils.QueryInt(qv, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		users, total, err := h.repo.List(r.Context(), strings.TrimSpace(qv.Get("q")), qv.Get("role"), utils.QueryBool(qv, "active"), limit, offset)
		if err != nil {
			utils.WriteError(w, r, repoError(err, "user"))
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": users, "total": total})
	}
}

// PATCH /api/users/{id}/role
func (h *UserHTTP) UpdateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Role string `json:"role" validate:"required,oneof=client technician admin manager"`
		}
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		role, _ := models.ParseRole(req.Role)
		u, err := h.repo.UpdateRole(r.Context(), id, role)
		h.respond(w, r, id, u, err)
	}
}

// PATCH /api/users/{id}/active
func (h *UserHTTP) SetActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Active *bool `json:"active" validate:"required"`
		}
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		u, err := h.repo.SetActive(r.Context(), id, *req.Active)
		h.respond(w, r, id, u, err)
	}
}

// PATCH /api/users/{id}/basic
func (h *UserHTTP) UpdateBasic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Name string `json:"name" validate:"required,max=120"`
		}
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			utils.WriteError(w, r, apperr.Validation("invalid request").WithDetail("name", "is required"))
			return
		}
		u, err := h.repo.UpdateBasic(r.Context(), id, name)
		h.respond(w, r, id, u, err)
	}
}

func (h *UserHTTP) respond(w http.ResponseWriter, r *http.Request, id string, u *models.User, err error) {
	if err != nil {
		utils.WriteError(w, r, repoError(err, "user"))
		return
	}
	if h.sessions != nil {
		h.sessions.Invalidate(id)
	}
	utils.JSON(w, http.StatusOK, u)
}
