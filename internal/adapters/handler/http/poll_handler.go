package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

type PollHandler struct {
	service     ports.PollService
	frontendURL string
}

func NewPollHandler(service ports.PollService, frontendURL string) *PollHandler {
	return &PollHandler{
		service:     service,
		frontendURL: frontendURL,
	}
}

type createPollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type createPollResponse struct {
	PollID    string `json:"pollId"`
	ShareLink string `json:"shareLink"`
}

type pollResponse struct {
	PollID    string          `json:"pollId"`
	Question  string          `json:"question"`
	Options   []domain.Option `json:"options"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	poll, err := h.service.Create(r.Context(), ports.CreatePollInput{
		Question: req.Question,
		Options:  req.Options,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPollInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrStorageUnavailable) {
			http.Error(w, "storage unavailable, please retry", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to create poll", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createPollResponse{
		PollID:    poll.ID,
		ShareLink: h.frontendURL + "/poll/" + poll.ID,
	})
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pollID")

	poll, err := h.service.GetPoll(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, "poll not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, domain.ErrStorageUnavailable) {
			http.Error(w, "storage unavailable, please retry", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to fetch poll", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pollResponse{
		PollID:    poll.ID,
		Question:  poll.Question,
		Options:   poll.Options,
		CreatedAt: poll.CreatedAt,
	})
}
