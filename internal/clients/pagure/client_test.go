package pagure

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
	return NewClient(apiclient.DefaultConfig("pagure", server.URL))
}

func TestGetIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/0/packaging-committee/issue/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"title": "Dummy Issue", "full_url": "https://pagure.io/packaging-committee/issue/42"}`))
	})

	issue, err := client.GetIssue(context.Background(), "packaging-committee", "42")

	require.NoError(t, err)
	assert.Equal(t, "Dummy Issue", issue.Title)
	assert.Equal(t, "https://pagure.io/packaging-committee/issue/42", issue.FullURL)
}

func TestGetIssue_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "Issue not found", "error_code": "ENOISSUE"}`))
	})

	_, err := client.GetIssue(context.Background(), "dummy", "42")

	require.Error(t, err)
	assert.Equal(t, "Issue querying Pagure: Issue not found", err.Error())
}

func TestGetIssue_Forbidden(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.GetIssue(context.Background(), "dummy", "42")

	require.Error(t, err)
	assert.Equal(t, "Issue querying Pagure: 403: Forbidden", err.Error())
}

func TestGetProject_Namespaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/0/rpms/dummy-package", r.URL.Path)
		_, _ = w.Write([]byte(`{"name": "dummy-package", "access_users": {
			"admin": ["admin-1"], "owner": ["owner-1", "owner-2"], "commit": []}}`))
	})

	project, err := client.GetProject(context.Background(), "rpms", "dummy-package")

	require.NoError(t, err)
	assert.Equal(t, []string{"owner-1", "owner-2"}, project.AccessUsers.Owner)
	assert.Equal(t, []string{"admin-1"}, project.AccessUsers.Admin)
	assert.Empty(t, project.AccessUsers.Commit)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "dummy/issue/42", joinPath("", "dummy", "issue", "42"))
	assert.Equal(t, "rpms/a%2Fb", joinPath("rpms", "a/b"))
}
