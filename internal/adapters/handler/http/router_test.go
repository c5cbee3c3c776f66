package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/livepoll/internal/adapters/handler/ws"
	"github.com/vncsmyrnk/livepoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

const testFrontendURL = "http://localhost:5173"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	hub := services.NewLiveHub()

	pollService := services.NewPollService(store)
	voteService := services.NewVoteService(store, store, hub)
	authService := services.NewAuthService(store, "test-secret")

	return NewHandler(
		NewPollHandler(pollService, testFrontendURL),
		NewVoteHandler(voteService),
		NewAuthHandler(authService),
		ws.NewHandler(hub),
	)
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func createTestPoll(t *testing.T, handler http.Handler, question string, options ...string) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/polls/", createPollRequest{
		Question: question,
		Options:  options,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decodeJSON[createPollResponse](t, rec).PollID
}
