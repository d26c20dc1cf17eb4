package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
)

type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// WriteError maps err to its HTTP status and a public message, and logs
// the full chain on the request logger. Untyped errors become 500s.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	l := zerolog.Ctx(r.Context())
	ev := l.Warn()
	if status >= http.StatusInternalServerError {
		ev = l.Error()
	}
	ev.Err(err).Str("error_kind", string(kind)).Int("status", status).Msg("request failed")

	body := errorBody{Error: apperr.PublicMessage(err), Code: string(kind)}
	if typed := apperr.As(err); typed != nil && status < http.StatusInternalServerError {
		body.Details = typed.Details
	}
	JSON(w, status, body)
}
