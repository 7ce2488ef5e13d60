package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3camp/cohort-hub/internal/domain/shared"
)

func TestClient_GrantRole(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := DefaultClientConfig("token123", "guild1")
	cfg.BaseURL = srv.URL
	client := NewClient(cfg)

	err := client.GrantRole(context.Background(), "42", "role-A")
	require.NoError(t, err)
	assert.Equal(t, "/guilds/guild1/members/42/roles/role-A", gotPath)
	assert.Equal(t, "Bot token123", gotAuth)
}

func TestClient_GrantRoleAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code": 50013, "message": "Missing Permissions"}`))
	}))
	defer srv.Close()

	cfg := DefaultClientConfig("token123", "guild1")
	cfg.BaseURL = srv.URL
	client := NewClient(cfg)

	err := client.GrantRole(context.Background(), "42", "role-A")
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Contains(t, err.Error(), "Missing Permissions")
}

func TestClient_GrantRoleMissingIDs(t *testing.T) {
	client := NewClient(DefaultClientConfig("t", "g"))

	err := client.GrantRole(context.Background(), "", "role-A")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
