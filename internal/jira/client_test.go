package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/toggl2jira/internal/config"
)

type seenRequest struct {
	method   string
	path     string
	username string
	password string
	token    string
	origin   string
	body     map[string]any
}

func newTempoServer(t *testing.T, status int, seen *seenRequest) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.path = r.URL.Path
		seen.username, seen.password, _ = r.BasicAuth()
		seen.token = r.Header.Get("X-Atlassian-Token")
		seen.origin = r.Header.Get("Origin")
		if err := json.NewDecoder(r.Body).Decode(&seen.body); err != nil {
			t.Errorf("decode worklog body: %v", err)
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"errorMessages":["Issue does not exist"]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestUnitedClientPostWorklog(t *testing.T) {
	var seen seenRequest
	server := newTempoServer(t, http.StatusOK, &seen)

	client, err := NewUnitedClient(config.JiraTarget{URL: server.URL, Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, server.URL, client.URL())

	err = client.PostWorklog(context.Background(), map[string]any{"timeSpentSeconds": 60})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, "/rest/tempo-timesheets/3/worklogs/", seen.path)
	assert.Equal(t, "alice", seen.username)
	assert.Equal(t, "secret", seen.password)
	assert.Empty(t, seen.token)
	assert.EqualValues(t, 60, seen.body["timeSpentSeconds"])
}

func TestWTClientPostWorklog(t *testing.T) {
	var seen seenRequest
	server := newTempoServer(t, http.StatusOK, &seen)

	client, err := NewWTClient(config.JiraTarget{URL: server.URL, Username: "bob", Password: "hunter2", Worker: "JIRAUSER42"})
	require.NoError(t, err)

	err = client.PostWorklog(context.Background(), map[string]any{"originTaskId": "ABC-1"})
	require.NoError(t, err)

	assert.Equal(t, "/rest/tempo-timesheets/4/worklogs", seen.path)
	assert.Equal(t, "bob", seen.username)
	assert.Equal(t, "no-check", seen.token)
	assert.Equal(t, server.URL, seen.origin)
	assert.Equal(t, "ABC-1", seen.body["originTaskId"])
}

func TestPostWorklogRejected(t *testing.T) {
	testCases := []struct {
		name   string
		status int
	}{
		{name: "Bad request", status: http.StatusBadRequest},
		{name: "Unauthorized", status: http.StatusUnauthorized},
		{name: "Created is not OK", status: http.StatusCreated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var seen seenRequest
			server := newTempoServer(t, tc.status, &seen)

			client, err := NewUnitedClient(config.JiraTarget{URL: server.URL, Username: "alice", Password: "secret"})
			require.NoError(t, err)

			err = client.PostWorklog(context.Background(), map[string]any{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), server.URL)
		})
	}
}

func TestPostWorklogUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewWTClient(config.JiraTarget{URL: url, Username: "bob", Password: "hunter2"})
	require.NoError(t, err)

	err = client.PostWorklog(context.Background(), map[string]any{})
	require.Error(t, err)
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewUnitedClient(config.JiraTarget{Username: "alice", Password: "secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")
}
