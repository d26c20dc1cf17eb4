package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

// RequireSelfOr admits callers acting on their own {id}, and callers
// allow accepts for anyone else's.
func RequireSelfOr(allow Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principal(r.Context())
			self := p.ID != "" && chi.URLParam(r, "id") == p.ID
			if !self && !allow(p) {
				utils.WriteError(w, r, apperr.Forbidden("you can only change your own profile"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
