package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrappedError(t *testing.T) {
	base := Mutation(errors.New("duplicate key"), "create ticket")
	wrapped := fmt.Errorf("store: %w", base)

	assert.Equal(t, KindMutation, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, New(KindMutation, "")))
	assert.False(t, errors.Is(wrapped, New(KindForbidden, "")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestPublicMessageHidesStorageCause(t *testing.T) {
	err := Mutation(errors.New("pq: relation tickets does not exist"), "create ticket")
	assert.Equal(t, "storage rejected the change", PublicMessage(err))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(KindOf(err)))

	v := Validation("title is required")
	assert.Equal(t, "title is required", PublicMessage(v))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(v.Kind))
}

func TestWithDetail(t *testing.T) {
	err := Validation("validation failed").WithDetail("clientId", "is required")
	require.NotNil(t, err.Details)
	assert.Equal(t, "is required", err.Details["clientId"])
}
