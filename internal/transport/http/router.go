package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"quiz-runner/internal/app"
)

// NewRouter exposes the quiz socket, the raw question set and a health probe.
func NewRouter(ws *WSHandler, source app.QuestionSource, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Get("/questions.json", func(w http.ResponseWriter, r *http.Request) {
		raw, err := source.Fetch(r.Context())
		if err != nil {
			log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("serve question set")
			http.Error(w, "question set unavailable", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	})
	return r
}
