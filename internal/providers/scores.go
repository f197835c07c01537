package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
)

// Prompt asks a multimodal model to rate the primary face and reply with JSON
// that ParseScores understands.
const Prompt = `Look at the people in this image. For the most prominent face, rate how strongly it shows each of these emotions:
HAPPY, SAD, ANGRY, CONFUSED, DISGUSTED, SURPRISED, CALM, FEAR.

Respond with JSON only, in this shape:
{"faces":[{"emotions":[{"type":"HAPPY","confidence":93.5}]}]}

Confidence is a number from 0 to 100. List the most prominent face first.
If there is no human face in the image, respond with {"faces":[]}.`

type scoresResponse struct {
	Faces []struct {
		Emotions []struct {
			Type       string  `json:"type"`
			Confidence float64 `json:"confidence"`
		} `json:"emotions"`
	} `json:"faces"`
}

// ParseScores decodes a model reply to Prompt into the scores of its first face.
// Markdown code fences around the JSON are tolerated.
func ParseScores(provider, text string) ([]emotion.Score, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var resp scoresResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, &DetectionError{Provider: provider, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(resp.Faces) == 0 {
		return nil, ErrNoFace
	}

	emotions := resp.Faces[0].Emotions
	scores := make([]emotion.Score, 0, len(emotions))
	for _, e := range emotions {
		label := emotion.Normalize(e.Type)
		if label == "FEAR" {
			label = emotion.Scared
		}
		scores = append(scores, emotion.Score{Label: label, Confidence: e.Confidence})
	}
	return scores, nil
}
