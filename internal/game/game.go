package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/objectstore"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
	"github.com/lehigh-university-libraries/empathy/internal/session"
	"github.com/lehigh-university-libraries/empathy/internal/storage"
)

// ErrNoGuess is returned when the player did not answer within the guess timeout.
var ErrNoGuess = errors.New("no guess made")

const (
	Question      = "Which emotion is this person exhibiting?"
	NoFaceMessage = "No face detected in this image. Skipping to the next one."
)

// Phase is where a round is in its lifecycle.
type Phase string

const (
	AwaitingClick Phase = "AWAITING_CLICK"
	GuessRecorded Phase = "GUESS_RECORDED"
	ResultShown   Phase = "RESULT_SHOWN"
	Reset         Phase = "RESET"
)

// Fetcher retrieves a picture for display and detection.
type Fetcher interface {
	Fetch(ctx context.Context, ref models.ImageRef) (*models.Image, error)
}

// UI opens one window per round. Clicks on the window's buttons must be
// passed to guess.Submit.
type UI interface {
	Open(ctx context.Context, roundID string, img *models.Image, guess *session.Guess) (Window, error)
}

// Window is the open interaction window of a round.
type Window interface {
	// ShowVerdict displays text modally and returns once it is dismissed.
	ShowVerdict(ctx context.Context, text string) error
	// ShowMessage displays a notice modally and returns once it is dismissed.
	ShowMessage(ctx context.Context, text string) error
	Close() error
}

// Controller sequences the rounds
type Controller struct {
	Lister  objectstore.Lister
	Fetcher Fetcher
	Oracle  providers.Oracle
	UI      UI
	Guess   *session.Guess
	Rounds  *storage.RoundStore

	// GuessTimeout bounds the wait for a click. Zero waits forever.
	GuessTimeout time.Duration

	// OnPhase, when set, is called on every phase transition.
	OnPhase func(roundID string, phase Phase)

	now func() time.Time
}

// NewController creates a controller with an empty guess and round history.
func NewController(lister objectstore.Lister, fetcher Fetcher, oracle providers.Oracle, ui UI) *Controller {
	return &Controller{
		Lister:  lister,
		Fetcher: fetcher,
		Oracle:  oracle,
		UI:      ui,
		Guess:   session.New(),
		Rounds:  storage.New(),
		now:     time.Now,
	}
}

// Run plays one round per listed picture until the listing is exhausted or ctx is done.
func (c *Controller) Run(ctx context.Context) (*Summary, error) {
	slog.Info("Starting game", "oracle", c.Oracle.Name())

	for ref, err := range c.Lister.List(ctx) {
		if err != nil {
			return Summarize(c.Rounds.GetAll()), fmt.Errorf("failed to list images: %w", err)
		}

		result := c.PlayRound(ctx, ref)
		if result.Outcome == models.OutcomeCancelled {
			break
		}
	}

	summary := Summarize(c.Rounds.GetAll())
	if err := ctx.Err(); err != nil {
		slog.Info("Game stopped", "rounds", summary.Total)
		return summary, err
	}
	slog.Info("Game finished", "rounds", summary.Total, "correct", summary.Correct)
	return summary, nil
}

// PlayRound shows one picture, waits for a guess and reports the verdict.
// Session state is reset and the window closed on every path.
func (c *Controller) PlayRound(ctx context.Context, ref models.ImageRef) models.RoundResult {
	result := models.RoundResult{
		ID:        uuid.NewString(),
		Ref:       ref,
		StartedAt: c.now(),
	}
	log := slog.With("round_id", result.ID, "key", ref.Key)

	c.Guess.Reset()
	defer func() {
		c.Guess.Reset()
		c.phase(result.ID, Reset)
		result.Duration = c.now().Sub(result.StartedAt)
		c.Rounds.Set(result)
		log.Info("Round finished", "outcome", result.Outcome, "guess", result.Guess, "answer", result.Answer)
	}()

	err := c.play(ctx, &result)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		result.Outcome = models.OutcomeCancelled
	case errors.Is(err, ErrNoGuess):
		result.Outcome = models.OutcomeNoGuess
	case errors.Is(err, providers.ErrNoFace):
		result.Outcome = models.OutcomeNoFace
	case errors.As(err, new(*fetchError)):
		result.Outcome = models.OutcomeFetchError
		log.Error("Skipping image that could not be fetched", "err", err)
	case errors.As(err, new(*windowError)):
		result.Outcome = models.OutcomeWindowError
		log.Error("Skipping image that could not be shown", "err", err)
	default:
		result.Outcome = models.OutcomeOracleError
		log.Error("Emotion detection failed", "err", err)
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

type fetchError struct{ err error }

func (e *fetchError) Error() string { return e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

type windowError struct{ err error }

func (e *windowError) Error() string { return "failed to open window: " + e.err.Error() }
func (e *windowError) Unwrap() error { return e.err }

func (c *Controller) play(ctx context.Context, result *models.RoundResult) error {
	img, err := c.Fetcher.Fetch(ctx, result.Ref)
	if err != nil {
		return &fetchError{err: err}
	}

	window, err := c.UI.Open(ctx, result.ID, img, c.Guess)
	if err != nil {
		return &windowError{err: err}
	}
	defer func() {
		if err := window.Close(); err != nil {
			slog.Warn("Failed to close window", "round_id", result.ID, "err", err)
		}
	}()
	c.phase(result.ID, AwaitingClick)

	var (
		scores []emotion.Score
		guess  emotion.Label
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scores, err = c.Oracle.DetectEmotions(gctx, img)
		return err
	})
	g.Go(func() error {
		waitCtx := gctx
		if c.GuessTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(gctx, c.GuessTimeout)
			defer cancel()
		}
		var err error
		guess, err = c.Guess.Await(waitCtx)
		if err != nil && gctx.Err() == nil {
			return ErrNoGuess
		}
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, providers.ErrNoFace) {
			if showErr := window.ShowMessage(ctx, NoFaceMessage); showErr != nil {
				slog.Warn("Failed to show message", "round_id", result.ID, "err", showErr)
			}
		}
		return err
	}

	result.Guess = guess
	c.phase(result.ID, GuessRecorded)

	answer, ok := emotion.Dominant(scores)
	if !ok {
		if err := window.ShowMessage(ctx, NoFaceMessage); err != nil {
			slog.Warn("Failed to show message", "round_id", result.ID, "err", err)
		}
		return providers.ErrNoFace
	}
	result.Answer = answer

	verdict := emotion.Judge(guess, answer)
	if verdict.Correct {
		result.Outcome = models.OutcomeCorrect
	} else {
		result.Outcome = models.OutcomeIncorrect
	}

	if err := window.ShowVerdict(ctx, verdict.Text()); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("Failed to show verdict", "round_id", result.ID, "err", err)
	}
	c.phase(result.ID, ResultShown)
	return nil
}

func (c *Controller) phase(roundID string, p Phase) {
	slog.Debug("Round phase", "round_id", roundID, "phase", p)
	if c.OnPhase != nil {
		c.OnPhase(roundID, p)
	}
}
