package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

func TestDetectEmotions(t *testing.T) {
	g := New("key", "gemini-1.5-flash")
	var gotParts []genai.Part
	g.generate = func(ctx context.Context, parts ...genai.Part) (string, error) {
		gotParts = parts
		return `{"faces":[{"emotions":[{"type":"CALM","confidence":70}]}]}`, nil
	}

	img := &models.Image{Ref: models.ImageRef{Key: "a.png"}, Data: []byte{1, 2, 3}, Format: "png"}
	scores, err := g.DetectEmotions(context.Background(), img)
	if err != nil {
		t.Fatalf("DetectEmotions() error = %v", err)
	}
	if len(scores) != 1 || scores[0].Label != emotion.Calm {
		t.Errorf("Unexpected scores: %+v", scores)
	}

	if len(gotParts) != 2 {
		t.Fatalf("Expected image and prompt parts, got %d", len(gotParts))
	}
	blob, ok := gotParts[0].(genai.Blob)
	if !ok || blob.MIMEType != "image/png" {
		t.Errorf("Expected PNG blob first, got %#v", gotParts[0])
	}
}

func TestDetectEmotionsGenerateError(t *testing.T) {
	g := New("key", "gemini-1.5-flash")
	g.generate = func(ctx context.Context, parts ...genai.Part) (string, error) {
		return "", errors.New("quota exceeded")
	}

	_, err := g.DetectEmotions(context.Background(), &models.Image{Data: []byte{1}})
	var de *providers.DetectionError
	if !errors.As(err, &de) || de.Provider != "gemini" {
		t.Errorf("error = %v, want gemini DetectionError", err)
	}
}

func TestDetectEmotionsWithoutData(t *testing.T) {
	g := New("key", "gemini-1.5-flash")
	if _, err := g.DetectEmotions(context.Background(), &models.Image{}); err == nil {
		t.Error("Expected error for empty image data")
	}
}

func TestMissingAPIKey(t *testing.T) {
	g := New("", "gemini-1.5-flash")
	_, err := g.DetectEmotions(context.Background(), &models.Image{Data: []byte{1}})
	if err == nil {
		t.Error("Expected error without API key")
	}
}
