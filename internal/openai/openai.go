package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

const (
	providerName = "openai"
	defaultURL   = "https://api.openai.com/v1/chat/completions"
)

// OpenAI is an oracle backed by an OpenAI vision-capable chat model
type OpenAI struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// New returns a new OpenAI oracle
func New(apiKey, model string) *OpenAI {
	return &OpenAI{
		apiKey: apiKey,
		model:  model,
		url:    defaultURL,
		client: &http.Client{},
	}
}

func (o *OpenAI) Name() string {
	return providerName
}

// DetectEmotions sends the picture as a data URL next to the rating prompt.
func (o *OpenAI) DetectEmotions(ctx context.Context, img *models.Image) ([]emotion.Score, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("no image data for %s", img.Ref)
	}

	text, err := o.complete(ctx, img)
	if err != nil {
		return nil, &providers.DetectionError{Provider: providerName, Err: err}
	}
	return providers.ParseScores(providerName, text)
}

func (o *OpenAI) complete(ctx context.Context, img *models.Image) (string, error) {
	format := img.Format
	if format == "" {
		format = "jpeg"
	}
	dataURL := "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	requestBody, err := json.Marshal(map[string]any{
		"model": o.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": providers.Prompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
		"response_format": map[string]string{"type": "json_object"},
		"temperature":     0,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
