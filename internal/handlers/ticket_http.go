package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/lifecycle"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

// TicketHTTP exposes the caller's ticket store. Every handler works on the
// session workspace, so visibility and permissions come from the store.
type TicketHTTP struct{}

func NewTicketHTTP() *TicketHTTP { return &TicketHTTP{} }

// GET /api/tickets?q=&status=&priority=&category=&assignedTo=&clientId=&sort=&order=&limit=&offset=
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		qv := r.URL.Query()
		status := strings.TrimSpace(qv.Get("status"))
		if status != "" {
			if _, err := models.ParseStatus(status); err != nil {
				utils.WriteError(w, r, apperr.Validation("invalid query").WithDetail("status", "is not a known status"))
				return
			}
		}
		f := repository.TicketFilter{
			Q:          strings.TrimSpace(qv.Get("q")),
			Status:     status,
			Priority:   strings.TrimSpace(qv.Get("priority")),
			Category:   strings.TrimSpace(qv.Get("category")),
			AssignedTo: strings.TrimSpace(qv.Get("assignedTo")),
			ClientID:   strings.TrimSpace(qv.Get("clientId")),
			Sort:       qv.Get("sort"),
			Order:      qv.Get("order"),
		}
		items, err := ws.Tickets.List(r.Context(), f)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		total := len(items)
		utils.JSON(w, http.StatusOK, map[string]any{"items": page(w, r, items), "total": total})
	}
}

// POST /api/tickets/reload
func (h *TicketHTTP) Reload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		items, err := ws.Tickets.Load(r.Context())
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// GET /api/tickets/{id}
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		t, err := ws.Tickets.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// POST /api/tickets
func (h *TicketHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		var in lifecycle.Draft
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		t, err := ws.Tickets.Create(r.Context(), in)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, t)
	}
}

// PATCH /api/tickets/{id}
func (h *TicketHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		var in models.TicketPatch
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		t, err := ws.Tickets.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// POST /api/tickets/{id}/assign
func (h *TicketHTTP) Assign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		var in struct {
			TechnicianID string `json:"technicianId" validate:"required"`
		}
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		t, err := ws.Tickets.Assign(r.Context(), chi.URLParam(r, "id"), in.TechnicianID)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// POST /api/tickets/{id}/comments
func (h *TicketHTTP) AddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		var in struct {
			Content     string   `json:"content"`
			Attachments []string `json:"attachments" validate:"max=20,dive,required"`
		}
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		c, err := ws.Tickets.AddComment(r.Context(), chi.URLParam(r, "id"), in.Content, in.Attachments)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, c)
	}
}

// GET /api/tickets/{id}/transitions
func (h *TicketHTTP) Transitions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		t, err := ws.Tickets.Get(r.Context(), id)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		targets, err := ws.Tickets.Targets(r.Context(), id)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"current": t.Status,
			"targets": targets,
			"guarded": ws.Tickets.Machine().Guarded(),
		})
	}
}
