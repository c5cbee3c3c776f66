package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postCredentials(t *testing.T, app *TestApp, path, email, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	resp, err := app.Client.Post(app.Server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp := postCredentials(t, app, "/api/auth/register", "voter@example.com", "hunter22")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))
	resp.Body.Close()
	assert.NotEmpty(t, registered["token"])

	resp = postCredentials(t, app, "/api/auth/register", "voter@example.com", "other")
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postCredentials(t, app, "/api/auth/login", "voter@example.com", "hunter22")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logged map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logged))
	resp.Body.Close()
	assert.NotEmpty(t, logged["token"])

	resp = postCredentials(t, app, "/api/auth/login", "voter@example.com", "wrong")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
