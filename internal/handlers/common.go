package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/middleware"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/session"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// workspace returns the caller's session workspace, writing a 401 when the
// route was mounted without RequireWorkspace.
func workspace(w http.ResponseWriter, r *http.Request) (*session.Workspace, bool) {
	ws := middleware.WorkspaceFrom(r.Context())
	if ws == nil {
		utils.WriteError(w, r, apperr.Unauthenticated("authentication required"))
		return nil, false
	}
	return ws, true
}

// page slices items by limit/offset query params and sets X-Total-Count.
func page[T any](w http.ResponseWriter, r *http.Request, items []T) []T {
	qv := r.URL.Query()
	limit := utils.QueryInt(qv, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := utils.QueryInt(qv, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(items)))
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// repoError maps repository sentinels onto typed errors.
func repoError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.New(apperr.KindConflict, what+" already exists")
	}
	return apperr.Wrap(apperr.KindInternal, err, "storage error")
}
