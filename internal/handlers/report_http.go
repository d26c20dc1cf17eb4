package handlers

import (
	"net/http"

	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/tickets"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

type ReportsHTTP struct{}

func NewReportsHTTP() *ReportsHTTP { return &ReportsHTTP{} }

// GET /api/reports/summary
// Counts are computed over the caller's visible tickets only.
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		items, err := ws.Tickets.List(r.Context(), repository.TicketFilter{})
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		utils.JSON(w, http.StatusOK, tickets.Summarize(ws.User, items))
	}
}
