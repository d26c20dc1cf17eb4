package middleware

import (
	"context"
	"net/http"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

// RequireAuth blocks when no user is present in context (set by WithAuth).
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, _ := utils.GetString(r.Context(), CtxUserID); uid == "" {
			utils.WriteError(w, r, apperr.Unauthenticated("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Permission is a role predicate over the caller, such as the ones in
// package access.
type Permission func(models.User) bool

// principal returns the workspace user when RequireWorkspace ran, and
// otherwise a user built from the token claims.
func principal(ctx context.Context) models.User {
	if ws := WorkspaceFrom(ctx); ws != nil {
		return ws.User
	}
	uid, _ := utils.GetString(ctx, CtxUserID)
	role, _ := utils.GetString(ctx, CtxRole)
	return models.User{ID: uid, Role: models.Role(role)}
}

// RequirePermission admits the request only when allow accepts the caller.
// Mount it after RequireWorkspace so the live profile is checked.
func RequirePermission(allow Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(principal(r.Context())) {
				utils.WriteError(w, r, apperr.Forbidden("your role cannot access this resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
