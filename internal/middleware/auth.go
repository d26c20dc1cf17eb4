package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/session"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

type ctxKey string

const (
	CtxUserID    ctxKey = "uid"
	CtxRole      ctxKey = "role"
	CtxSessionID ctxKey = "sid"

	ctxWorkspace ctxKey = "workspace"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

// WithAuth reads the JWT from the session cookie or a Bearer header and, if
// valid, puts the user id, role and session id in the context. Requests
// without a usable token pass through unauthenticated.
func WithAuth(log zerolog.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tok string
			if c, err := r.Cookie(SessionCookie); err == nil {
				tok = c.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			}

			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := utils.ParseJWT(secret, tok)
			if err != nil {
				log.Debug().Err(err).Msg("discarding session token")
				// clear the broken cookie so the browser stops sending it
				ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
			ctx = context.WithValue(ctx, CtxRole, claims.Role)
			ctx = context.WithValue(ctx, CtxSessionID, claims.SessionID())
			l := zerolog.Ctx(ctx).With().Str("user_id", claims.UserID).Logger()
			next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
		})
	}
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// WorkspaceSource resolves the live workspace of a session.
type WorkspaceSource interface {
	Workspace(ctx context.Context, sessionID, userID string) (*session.Workspace, error)
}

// RequireWorkspace resolves the caller's session workspace and stores it in
// the context. The role in the context is replaced by the profile's current
// role, so role changes apply without a new token.
func RequireWorkspace(src WorkspaceSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, _ := utils.GetString(r.Context(), CtxUserID)
			sid, _ := utils.GetString(r.Context(), CtxSessionID)
			if uid == "" || sid == "" {
				utils.WriteError(w, r, apperr.Unauthenticated("authentication required"))
				return
			}
			ws, err := src.Workspace(r.Context(), sid, uid)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindAuthentication {
					ClearSessionCookie(w)
				}
				utils.WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), CtxRole, ws.User.Role.String())
			next.ServeHTTP(w, r.WithContext(WithWorkspace(ctx, ws)))
		})
	}
}

func WithWorkspace(ctx context.Context, ws *session.Workspace) context.Context {
	return context.WithValue(ctx, ctxWorkspace, ws)
}

// WorkspaceFrom returns the workspace set by RequireWorkspace, or nil.
func WorkspaceFrom(ctx context.Context) *session.Workspace {
	ws, _ := ctx.Value(ctxWorkspace).(*session.Workspace)
	return ws
}
