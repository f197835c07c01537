package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/game"
)

type roundView struct {
	Waiting    bool             `json:"waiting"`
	ID         string           `json:"id,omitempty"`
	Key        string           `json:"key,omitempty"`
	Question   string           `json:"question,omitempty"`
	ImageURL   string           `json:"image_url,omitempty"`
	Buttons    []emotion.Button `json:"buttons,omitempty"`
	Guessed    bool             `json:"guessed"`
	Guess      emotion.Label    `json:"guess,omitempty"`
	NoticeKind string           `json:"notice_kind,omitempty"`
	Notice     string           `json:"notice,omitempty"`
}

// HandleRound describes the round currently on screen.
func (h *Handler) HandleRound(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	cur := h.current
	var view roundView
	if cur == nil {
		view.Waiting = true
	} else {
		label, submitted := cur.guess.Snapshot()
		view = roundView{
			ID:         cur.id,
			Key:        cur.ref.Key,
			Question:   game.Question,
			ImageURL:   "/api/round/image?id=" + cur.id,
			Buttons:    emotion.Buttons(),
			Guessed:    submitted,
			Guess:      label,
			NoticeKind: cur.noticeKind,
			Notice:     cur.notice,
		}
	}
	h.mu.Unlock()

	h.writeJSON(w, view)
}

// HandleImage serves the picture of the current round.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	cur, ok := h.currentOrError(w)
	if !ok {
		return
	}

	h.mu.Lock()
	data := cur.jpeg
	h.mu.Unlock()

	if id := r.URL.Query().Get("id"); data == nil || (id != "" && id != cur.id) {
		h.writeError(w, "Round is no longer on screen", http.StatusGone)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		h.writeError(w, "Unable to write image", http.StatusInternalServerError)
	}
}

// HandleGuess records the player's button click.
func (h *Handler) HandleGuess(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ID == "" {
		h.writeError(w, "Round id is required", http.StatusBadRequest)
		return
	}

	label := emotion.Label(request.Label)
	if !emotion.IsButton(label) {
		h.writeError(w, "Unknown emotion: "+request.Label, http.StatusBadRequest)
		return
	}

	cur, ok := h.currentOrError(w)
	if !ok {
		return
	}
	if request.ID != cur.id {
		h.writeError(w, "Round is no longer on screen", http.StatusConflict)
		return
	}

	if !cur.guess.Submit(label) {
		h.writeError(w, "Guess already made for this round", http.StatusConflict)
		return
	}

	h.writeJSON(w, map[string]any{
		"id":    cur.id,
		"guess": label,
	})
}

// HandleAck dismisses the verdict or message on screen.
func (h *Handler) HandleAck(w http.ResponseWriter, r *http.Request) {
	cur, ok := h.currentOrError(w)
	if !ok {
		return
	}

	h.mu.Lock()
	ack := cur.ack
	cur.ack = nil
	cur.notice = ""
	cur.noticeKind = ""
	h.mu.Unlock()

	if ack == nil {
		h.writeError(w, "Nothing to acknowledge", http.StatusConflict)
		return
	}
	close(ack)

	w.WriteHeader(http.StatusNoContent)
}

// HandleRounds lists the rounds played so far.
func (h *Handler) HandleRounds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.roundStore.GetAll())
}
