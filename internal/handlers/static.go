package handlers

import (
	"embed"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static/index.html
var static embed.FS

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	data, err := static.ReadFile("static/index.html")
	if err != nil {
		h.writeError(w, "Page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write page", "err", err)
	}
}

// NewRouter wires the page and its JSON API.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/", h.HandleStatic)
	r.Get("/api/round", h.HandleRound)
	r.Get("/api/round/image", h.HandleImage)
	r.Post("/api/round/guess", h.HandleGuess)
	r.Post("/api/round/ack", h.HandleAck)
	r.Get("/api/rounds", h.HandleRounds)
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	return r
}
