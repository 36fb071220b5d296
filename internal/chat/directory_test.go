package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryPeersExcludesSelf(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users", r.URL.Path)
		w.Write([]byte(`[{"id":1,"username":"alice"},{"id":2,"username":"bob"},{"id":3,"username":"carol"}]`))
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL, srv.Client(), Identity{ID: 1, Username: "alice"})
	peers, err := dir.Peers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Peer{{ID: 2, Username: "bob"}, {ID: 3, Username: "carol"}}, peers)
}

func TestDirectoryPeersUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL, srv.Client(), Identity{ID: 1, Username: "alice"})
	_, err := dir.Peers(context.Background())
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestDirectoryGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/groups/all", r.URL.Path)
		w.Write([]byte(`{"success":true,"groups":[{"id":5,"group_name":"team","description":"the team"}]}`))
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL, srv.Client(), Identity{ID: 1, Username: "alice"})
	groups, err := dir.Groups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []GroupSummary{{ID: 5, Name: "team", Description: "the team"}}, groups)
}

func TestDirectoryGroupsEmptyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"groups":[]}`))
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL, srv.Client(), Identity{})
	groups, err := dir.Groups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestDirectoryGroupsBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"db down"}`))
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL, srv.Client(), Identity{})
	_, err := dir.Groups(context.Background())
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestDirectoryCreateGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/groups/create", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		var body createGroupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, createGroupRequest{GroupName: "team", Description: "the team"}, body)
		w.Write([]byte(`{"success":true,"group_id":5,"message":"group created"}`))
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL, srv.Client(), Identity{ID: 1, Username: "alice"})
	id, err := dir.CreateGroup(context.Background(), " team ", " the team ")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
}

func TestDirectoryCreateGroupRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"group name too short"}`))
	}))
	defer srv.Close()

	dir := NewDirectory(srv.URL, srv.Client(), Identity{})
	_, err := dir.CreateGroup(context.Background(), "ab", "")
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestDirectoryCreateGroupEmptyName(t *testing.T) {
	dir := NewDirectory("http://unused", http.DefaultClient, Identity{})
	_, err := dir.CreateGroup(context.Background(), "   ", "")
	require.Error(t, err)
}
