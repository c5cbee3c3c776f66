package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	OptionIndex int `json:"optionIndex"`
}

type voteResponse struct {
	Success bool            `json:"success"`
	Options []domain.Option `json:"options"`
}

func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.SubmitVoteInput{
		PollID:      pollID,
		OptionIndex: req.OptionIndex,
		Fingerprint: r.Header.Get("X-Fingerprint"),
		IPAddress:   clientIP(r),
	}

	poll, err := h.service.SubmitVote(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingIdentity), errors.Is(err, domain.ErrInvalidOption):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrPollNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrDuplicateVote):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, domain.ErrStorageUnavailable):
			// Retrying is safe: a replayed vote lands on ErrDuplicateVote.
			http.Error(w, "storage unavailable, please retry", http.StatusServiceUnavailable)
		default:
			http.Error(w, "failed to vote", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(voteResponse{
		Success: true,
		Options: poll.Options,
	})
}

type voteStatusResponse struct {
	Voted bool `json:"voted"`
}

// VoteStatus lets the poll page decide whether to show the voting form or the
// already-voted view.
func (h *VoteHandler) VoteStatus(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "pollID")

	voted, err := h.service.HasVoted(r.Context(), pollID, r.Header.Get("X-Fingerprint"), clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingIdentity):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrPollNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrStorageUnavailable):
			http.Error(w, "storage unavailable, please retry", http.StatusServiceUnavailable)
		default:
			http.Error(w, "failed to check vote status", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(voteStatusResponse{Voted: voted})
}
