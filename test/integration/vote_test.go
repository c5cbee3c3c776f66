package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteResponse struct {
	Success bool             `json:"success"`
	Options []optionResponse `json:"options"`
}

func castVote(t *testing.T, app *TestApp, pollID string, index int, fingerprint, forwardedFor string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{"optionIndex": index})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, app.Server.URL+"/api/votes/"+pollID, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if fingerprint != "" {
		req.Header.Set("X-Fingerprint", fingerprint)
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

func TestVoteIsCountedOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	created := createPoll(t, app, "Tabs or spaces?", []string{"Tabs", "Spaces"})

	resp := castVote(t, app, created.PollID, 1, "fp-1", "10.0.0.1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var vote voteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vote))
	resp.Body.Close()

	assert.True(t, vote.Success)
	require.Len(t, vote.Options, 2)
	assert.Equal(t, int64(1), vote.Options[1].Votes)

	// Same fingerprint from another address.
	resp = castVote(t, app, created.PollID, 0, "fp-1", "10.0.0.2")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Same address with another fingerprint.
	resp = castVote(t, app, created.PollID, 0, "fp-2", "10.0.0.1")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE poll_id = $1", created.PollID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The status endpoint reflects the committed vote for either signal.
	req, err := http.NewRequest(http.MethodGet, app.Server.URL+"/api/votes/"+created.PollID, nil)
	require.NoError(t, err)
	req.Header.Set("X-Fingerprint", "fp-1")
	req.Header.Set("X-Forwarded-For", "10.0.0.99")

	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	var status struct {
		Voted bool `json:"voted"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.True(t, status.Voted)
}

func TestVoteRejections(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	created := createPoll(t, app, "Tabs or spaces?", []string{"Tabs", "Spaces"})

	resp := castVote(t, app, created.PollID, 0, "", "10.0.0.1")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing fingerprint")

	resp = castVote(t, app, created.PollID, 5, "fp-1", "10.0.0.1")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "option out of range")

	resp = castVote(t, app, "nonexistent", 0, "fp-1", "10.0.0.1")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "unknown poll")
}

func TestConcurrentVotesAreNotLost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	created := createPoll(t, app, "Tabs or spaces?", []string{"Tabs", "Spaces"})

	const voters = 20
	var accepted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp := castVote(t, app, created.PollID, n%2,
				fmt.Sprintf("fp-%d", n), fmt.Sprintf("10.1.0.%d", n))
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				accepted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(voters), accepted.Load())

	var total int64
	err := app.DB.QueryRow("SELECT SUM(votes) FROM poll_options WHERE poll_id = $1", created.PollID).Scan(&total)
	require.NoError(t, err)
	assert.Equal(t, int64(voters), total)
}

func TestConcurrentDuplicatesCollapseToOne(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	created := createPoll(t, app, "Tabs or spaces?", []string{"Tabs", "Spaces"})

	const voters = 10
	var accepted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp := castVote(t, app, created.PollID, 0, "shared-fp", fmt.Sprintf("10.2.0.%d", n))
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				accepted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())

	var count int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE poll_id = $1", created.PollID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
