package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createPollResponse struct {
	PollID    string `json:"pollId"`
	ShareLink string `json:"shareLink"`
}

type optionResponse struct {
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
}

type pollResponse struct {
	PollID    string           `json:"pollId"`
	Question  string           `json:"question"`
	Options   []optionResponse `json:"options"`
	CreatedAt time.Time        `json:"createdAt"`
}

func createPoll(t *testing.T, app *TestApp, question string, options []string) createPollResponse {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"question": question,
		"options":  options,
	})
	require.NoError(t, err)

	resp, err := app.Client.Post(app.Server.URL+"/api/polls/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created createPollResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func TestCreateAndFetchPoll(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	created := createPoll(t, app, "Tabs or spaces?", []string{"Tabs", "Spaces"})
	assert.NotEmpty(t, created.PollID)
	assert.Contains(t, created.ShareLink, created.PollID)

	resp, err := app.Client.Get(app.Server.URL + "/api/polls/" + created.PollID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var poll pollResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&poll))

	assert.Equal(t, created.PollID, poll.PollID)
	assert.Equal(t, "Tabs or spaces?", poll.Question)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, "Tabs", poll.Options[0].Text)
	assert.Equal(t, int64(0), poll.Options[0].Votes)
}

func TestCreatePollRejectsBadInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	payloads := []map[string]interface{}{
		{"question": "", "options": []string{"A", "B"}},
		{"question": "Q?", "options": []string{"A"}},
		{"question": "Q?", "options": []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}},
	}

	for _, payload := range payloads {
		body, err := json.Marshal(payload)
		require.NoError(t, err)

		resp, err := app.Client.Post(app.Server.URL+"/api/polls/", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestGetUnknownPoll(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp, err := app.Client.Get(app.Server.URL + "/api/polls/nonexistent")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
