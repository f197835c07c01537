package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

const providerName = "gemini"

type generateFunc func(ctx context.Context, parts ...genai.Part) (string, error)

// Gemini is an oracle backed by a Gemini multimodal model
type Gemini struct {
	apiKey   string
	model    string
	generate generateFunc
}

// New returns a new Gemini oracle
func New(apiKey, model string) *Gemini {
	g := &Gemini{apiKey: apiKey, model: model}
	g.generate = g.generateContent
	return g
}

func (g *Gemini) Name() string {
	return providerName
}

// DetectEmotions sends the picture and a rating prompt, then parses the JSON reply.
func (g *Gemini) DetectEmotions(ctx context.Context, img *models.Image) ([]emotion.Score, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("no image data for %s", img.Ref)
	}

	format := img.Format
	if format == "" {
		format = "jpeg"
	}

	text, err := g.generate(ctx, genai.ImageData(format, img.Data), genai.Text(providers.Prompt))
	if err != nil {
		return nil, &providers.DetectionError{Provider: providerName, Err: err}
	}

	return providers.ParseScores(providerName, text)
}

func (g *Gemini) generateContent(ctx context.Context, parts ...genai.Part) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
