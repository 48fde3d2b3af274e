package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPDirectory_GetGroupsOf(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReturnsGroups", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/alice/groups", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"groups":["admins","devs"]}`))
		}))
		defer server.Close()

		d := NewHTTPDirectory(server.URL, time.Second)
		groups, err := d.GetGroupsOf(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, []string{"admins", "devs"}, groups)
	})

	t.Run("Success_UnknownUserHasNoGroups", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		d := NewHTTPDirectory(server.URL, time.Second)
		groups, err := d.GetGroupsOf(ctx, "ghost")

		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("Error_ServerFailure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		d := NewHTTPDirectory(server.URL, time.Second)
		_, err := d.GetGroupsOf(ctx, "alice")

		assert.Error(t, err)
	})

	t.Run("Error_MalformedResponse", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		d := NewHTTPDirectory(server.URL, time.Second)
		_, err := d.GetGroupsOf(ctx, "alice")

		assert.Error(t, err)
	})
}

func TestNoopDirectory_GetGroupsOf(t *testing.T) {
	groups, err := NoopDirectory{}.GetGroupsOf(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Nil(t, groups)
}
