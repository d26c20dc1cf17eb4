package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
)

func TestJWTRoundTrip(t *testing.T) {
	tok, err := SignJWT("secret", "u1", "technician", "sess-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "technician", claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID())

	_, err = ParseJWT("other", tok)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	tok, err := SignJWT("secret", "u1", "client", "s", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT("secret", tok)
	assert.Error(t, err)
}

func TestJWTRequiresSessionAndIssuer(t *testing.T) {
	_, err := SignJWT("secret", "u1", "client", "", time.Hour)
	assert.ErrorIs(t, err, ErrNoSession)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "s1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseJWT("secret", foreign)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	h, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "hunter22"))
	assert.False(t, CheckPassword(h, "hunter23"))
	assert.False(t, CheckPassword("", "hunter22"))

	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

type signupBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestDecodeJSON(t *testing.T) {
	var body signupBody
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"123456"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &body))
	assert.Equal(t, "a@b.co", body.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"1"}`))
	err := DecodeJSON(httptest.NewRecorder(), r, &body)
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "must be a valid email", typed.Details["email"])
	assert.Equal(t, "must be at least 6", typed.Details["password"])

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"123456","role":"admin"}`))
	err = DecodeJSON(httptest.NewRecorder(), r, &body)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "unknown fields are rejected")
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperr.Forbidden("you cannot assign tickets"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "you cannot assign tickets", body["error"])

	rec = httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperr.Mutation(errors.New("pq: secret detail"), "Could not update ticket."))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")

	rec = httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestQueryHelpers(t *testing.T) {
	q := url.Values{"limit": {"20"}, "bad": {"x"}, "active": {"false"}}
	assert.Equal(t, 20, QueryInt(q, "limit", 50))
	assert.Equal(t, 50, QueryInt(q, "bad", 50))
	require.NotNil(t, QueryBool(q, "active"))
	assert.False(t, *QueryBool(q, "active"))
	assert.Nil(t, QueryBool(q, "missing"))
}
