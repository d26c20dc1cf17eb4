package handlers

import (
	"net/http"
	"time"

	"github.com/Reissam/ajuda-tech-hub/internal/middleware"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
	"github.com/Reissam/ajuda-tech-hub/internal/service"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

type AuthHTTP struct {
	svc *service.AuthService
	// secure marks the session cookie Secure; set behind HTTPS.
	secure bool
}

func NewAuthHTTP(s *service.AuthService, secureCookie bool) *AuthHTTP {
	return &AuthHTTP{svc: s, secure: secureCookie}
}

type authResponse struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (h *AuthHTTP) issue(w http.ResponseWriter, res *service.AuthResult, status int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secure,
		Expires:  res.Workspace.Session.ExpiresAt,
	})
	utils.JSON(w, status, authResponse{
		User:      res.User,
		Token:     res.Token,
		ExpiresAt: res.Workspace.Session.ExpiresAt,
	})
}

// POST /api/auth/signup
func (h *AuthHTTP) SignUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name" validate:"max=120"`
		}
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		res, err := h.svc.SignUp(r.Context(), in.Email, in.Password, service.SignUpAttrs{Name: in.Name})
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		h.issue(w, res, http.StatusCreated)
	}
}

// POST /api/auth/signin
func (h *AuthHTTP) SignIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email" validate:"required"`
			Password string `json:"password" validate:"required"`
		}
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			utils.WriteError(w, r, err)
			return
		}
		res, err := h.svc.SignIn(r.Context(), in.Email, in.Password)
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		h.issue(w, res, http.StatusOK)
	}
}

// POST /api/auth/signout
func (h *AuthHTTP) SignOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sid, _ := utils.GetString(r.Context(), middleware.CtxSessionID); sid != "" {
			if err := h.svc.SignOut(r.Context(), sid); err != nil {
				utils.WriteError(w, r, err)
				return
			}
		}
		middleware.ClearSessionCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/auth/me
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"user":    ws.User,
			"session": ws.Session,
		})
	}
}
