package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"answerparty/internal/handlers"
)

func routes(h *handlers.Handler) http.Handler {
	mux := chi.NewRouter()

	mux.Use(cors.AllowAll().Handler)

	mux.Route("/games", func(r chi.Router) {
		r.Post("/", h.HandleCreateGame)
		r.Get("/", h.HandleListGames)
		r.Get("/{gameID}", h.HandleGetGame)
		r.Post("/{gameID}/join", h.HandleJoinGame)
		r.Get("/{gameID}/players", h.HandleListPlayers)
		r.Get("/{gameID}/scores", h.HandleGameScores)
		r.Post("/{gameID}/ready", h.HandleToggleReady)
		r.Post("/{gameID}/start", h.HandleStartGame)
		r.Post("/{gameID}/rounds", h.HandleStartRound)
		r.Get("/{gameID}/rounds", h.HandleListRounds)
		r.Get("/{gameID}/events", h.HandleEvents)
	})

	mux.Route("/rounds", func(r chi.Router) {
		r.Post("/{roundID}/submissions", h.HandleSubmitAnswer)
		r.Post("/{roundID}/reveal", h.HandleRevealRound)
		r.Post("/{roundID}/votes", h.HandleVote)
		r.Get("/{roundID}/results", h.HandleRoundResults)
	})

	mux.Route("/questions", func(r chi.Router) {
		r.Get("/random", h.HandleRandomQuestion)
	})

	mux.Route("/admin", func(r chi.Router) {
		r.Post("/questions/import", h.HandleImportQuestions)
	})

	return mux
}
