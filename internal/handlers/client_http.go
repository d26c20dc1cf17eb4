package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Reissam/ajuda-tech-hub/internal/clients"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

type ClientHTTP struct{}

func NewClientHTTP() *ClientHTTP { return &ClientHTTP{} }

// GET /api/clients?q=
func (h *ClientHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		items, err := ws.Clients.List(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		total := len(items)
		utils.JSON(w, http.StatusOK, map[string]any{"items": page(w, r, items), "total": total})
	}
}

// POST /api/clients/reload refetches the directory, picking up sites other
// sessions created or edited.
func (h *ClientHTTP) Reload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		items, err := ws.Clients.Load(r.Context())
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// GET /api/clients/{id}
func (h *ClientHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		c, err := ws.Clients.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, c)
	}
}

// POST /api/clients
func (h *ClientHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		var in clients.Draft
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		c, err := ws.Clients.Create(r.Context(), in)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusCreated, c)
	}
}

// PATCH /api/clients/{id}
func (h *ClientHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		var in models.ClientPatch
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		c, err := ws.Clients.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, c)
	}
}
