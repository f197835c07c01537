package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
)

// ErrNoFace is returned when the service found no face in the picture.
var ErrNoFace = errors.New("no face detected")

// DetectionError wraps a failure reported by a detection service.
type DetectionError struct {
	Provider string
	Err      error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%s detection failed: %v", e.Provider, e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// Oracle defines the interface for an emotion detection service
type Oracle interface {
	// DetectEmotions returns the emotion scores of the primary face in img,
	// or ErrNoFace when there is none.
	DetectEmotions(ctx context.Context, img *models.Image) ([]emotion.Score, error)
	Name() string
}
