package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

const providerName = "ollama"

// Ollama is an oracle backed by a local vision model served by Ollama
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// New returns a new Ollama oracle talking to the server at baseURL
func New(baseURL, model string) *Ollama {
	return &Ollama{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (o *Ollama) Name() string {
	return providerName
}

// DetectEmotions posts the picture to /api/generate and parses the JSON reply.
func (o *Ollama) DetectEmotions(ctx context.Context, img *models.Image) ([]emotion.Score, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("no image data for %s", img.Ref)
	}

	text, err := o.generate(ctx, img.Data)
	if err != nil {
		return nil, &providers.DetectionError{Provider: providerName, Err: err}
	}
	return providers.ParseScores(providerName, text)
}

func (o *Ollama) generate(ctx context.Context, data []byte) (string, error) {
	requestBody, err := json.Marshal(map[string]any{
		"model":  o.model,
		"prompt": providers.Prompt,
		"images": []string{base64.StdEncoding.EncodeToString(data)},
		"format": "json",
		"stream": false,
		"options": map[string]any{
			"temperature": 0,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
