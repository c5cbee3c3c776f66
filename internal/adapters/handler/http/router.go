package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(pollHandler *PollHandler, voteHandler *VoteHandler, authHandler *AuthHandler, liveHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/polls", func(r chi.Router) {
			r.Post("/", pollHandler.CreatePoll)
			r.Get("/{pollID}", pollHandler.GetPoll)
		})

		r.Route("/votes", func(r chi.Router) {
			r.Post("/{pollID}", voteHandler.VoteOnPoll)
			r.Get("/{pollID}", voteHandler.VoteStatus)
		})
	})

	r.Handle("/ws", liveHandler)

	return r
}
