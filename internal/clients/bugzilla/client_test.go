package bugzilla

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"Zodbot/internal/clients/apiclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(apiclient.DefaultConfig("bugzilla", server.URL))
}

func TestGetBug(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/bug/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"bugs": [{"component": ["Bugzilla General"], "summary": "Dummy Issue"}]}`))
	})

	bug, err := client.GetBug(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, "Dummy Issue", bug.Summary)
	assert.Equal(t, []string{"Bugzilla General"}, bug.Component)
	assert.Equal(t, client.api.BaseURL()+"/42", client.BugURL("42"))
}

func TestGetBug_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": true, "message": "Bug #42 does not exist.", "code": 101}`))
	})

	_, err := client.GetBug(context.Background(), "42")

	require.Error(t, err)
	assert.Equal(t, "Issue querying Bugzilla: Bug #42 does not exist.", err.Error())
}

func TestGetBug_Forbidden(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.GetBug(context.Background(), "42")

	require.Error(t, err)
	assert.Equal(t, "Issue querying Bugzilla: 403: Forbidden", err.Error())
}
