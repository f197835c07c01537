package session

import (
	"context"
	"sync"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
)

// Guess hands the player's choice from the UI to the round controller.
// It holds at most one guess per round; Reset starts a new round.
type Guess struct {
	mu        sync.Mutex
	label     emotion.Label
	submitted bool
	ch        chan emotion.Label
}

// New returns an empty Guess ready for the first round.
func New() *Guess {
	return &Guess{ch: make(chan emotion.Label, 1)}
}

// Submit records the player's choice. Only the first call after a Reset
// is honored; later calls return false.
func (g *Guess) Submit(label emotion.Label) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitted {
		return false
	}
	g.label = label
	g.submitted = true
	g.ch <- label
	return true
}

// Await blocks until a guess is submitted or ctx is done.
func (g *Guess) Await(ctx context.Context) (emotion.Label, error) {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()

	select {
	case label := <-ch:
		return label, nil
	case <-ctx.Done():
		return emotion.None, ctx.Err()
	}
}

// Reset clears the guess and the submitted flag.
func (g *Guess) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.label = emotion.None
	g.submitted = false
	g.ch = make(chan emotion.Label, 1)
}

// Snapshot returns the current guess and whether one was submitted.
func (g *Guess) Snapshot() (emotion.Label, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.label, g.submitted
}
