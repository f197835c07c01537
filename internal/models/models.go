package models

import (
	"image"
	"path"
	"time"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
)

// ImageRef names a stored picture. An empty Bucket means Key is a local file path.
type ImageRef struct {
	Bucket string `json:"bucket,omitempty"`
	Key    string `json:"key"`
	Size   int64  `json:"size,omitempty"`
}

// IsLocal reports whether the picture lives on the local filesystem.
func (r ImageRef) IsLocal() bool {
	return r.Bucket == ""
}

// Name is the last path element of the key.
func (r ImageRef) Name() string {
	return path.Base(r.Key)
}

func (r ImageRef) String() string {
	if r.IsLocal() {
		return r.Key
	}
	return "s3://" + r.Bucket + "/" + r.Key
}

// Image is a fetched picture
type Image struct {
	Ref     ImageRef
	Data    []byte
	Format  string      // "jpeg", "png", "gif", "webp"
	Display image.Image // fitted to the window
}

// Outcome is how a round ended.
type Outcome string

const (
	OutcomeCorrect     Outcome = "correct"
	OutcomeIncorrect   Outcome = "incorrect"
	OutcomeNoFace      Outcome = "no_face"
	OutcomeOracleError Outcome = "oracle_error"
	OutcomeFetchError  Outcome = "fetch_error"
	OutcomeWindowError Outcome = "window_error"
	OutcomeNoGuess     Outcome = "no_guess"
	OutcomeCancelled   Outcome = "cancelled"
)

// RoundResult represents one played image
type RoundResult struct {
	ID        string        `json:"id"`
	Ref       ImageRef      `json:"ref"`
	Guess     emotion.Label `json:"guess,omitempty"`
	Answer    emotion.Label `json:"answer,omitempty"`
	Outcome   Outcome       `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Scored reports whether the round produced a verdict.
func (r RoundResult) Scored() bool {
	return r.Outcome == OutcomeCorrect || r.Outcome == OutcomeIncorrect
}
