package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/lehigh-university-libraries/empathy/internal/game"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/session"
	"github.com/lehigh-university-libraries/empathy/internal/storage"
)

// Handler serves the interaction window to a local browser. It implements game.UI.
type Handler struct {
	roundStore *storage.RoundStore

	mu      sync.Mutex
	current *round
}

type round struct {
	id    string
	ref   models.ImageRef
	jpeg  []byte
	guess *session.Guess

	noticeKind string // "verdict" or "message"
	notice     string
	ack        chan struct{}
}

func New(rounds *storage.RoundStore) *Handler {
	return &Handler{roundStore: rounds}
}

// Open makes the round the one the page shows.
func (h *Handler) Open(ctx context.Context, roundID string, img *models.Image, guess *session.Guess) (game.Window, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img.Display, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	r := &round{id: roundID, ref: img.Ref, jpeg: buf.Bytes(), guess: guess}

	h.mu.Lock()
	h.current = r
	h.mu.Unlock()

	slog.Info("Round open in browser", "round_id", roundID, "key", img.Ref.Key)
	return &webWindow{h: h, r: r}, nil
}

type webWindow struct {
	h *Handler
	r *round
}

func (w *webWindow) ShowVerdict(ctx context.Context, text string) error {
	return w.show(ctx, "verdict", text)
}

func (w *webWindow) ShowMessage(ctx context.Context, text string) error {
	return w.show(ctx, "message", text)
}

// show publishes a notice and waits for the page to acknowledge it.
func (w *webWindow) show(ctx context.Context, kind, text string) error {
	ack := make(chan struct{})

	w.h.mu.Lock()
	w.r.noticeKind = kind
	w.r.notice = text
	w.r.ack = ack
	w.h.mu.Unlock()

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *webWindow) Close() error {
	w.h.mu.Lock()
	defer w.h.mu.Unlock()
	if w.h.current == w.r {
		w.h.current = nil
	}
	w.r.jpeg = nil
	return nil
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Debug(message, "status", code)
	}
	http.Error(w, message, code)
}

// Round helpers
func (h *Handler) currentOrError(w http.ResponseWriter) (*round, bool) {
	h.mu.Lock()
	r := h.current
	h.mu.Unlock()
	if r == nil {
		h.writeError(w, "No round in progress", http.StatusConflict)
		return nil, false
	}
	return r, true
}
