package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

func TestDetectEmotions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var body struct {
			Model  string   `json:"model"`
			Images []string `json:"images"`
			Format string   `json:"format"`
			Stream bool     `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
			return
		}
		if body.Model != "llava" || body.Format != "json" || body.Stream {
			t.Errorf("Unexpected request: %+v", body)
		}
		if len(body.Images) != 1 || body.Images[0] != base64.StdEncoding.EncodeToString([]byte("jpeg")) {
			t.Errorf("images = %v", body.Images)
		}

		_ = json.NewEncoder(w).Encode(map[string]string{
			"response": `{"faces":[{"emotions":[{"type":"ANGRY","confidence":64},{"type":"FEAR","confidence":12}]}]}`,
		})
	}))
	defer server.Close()

	o := New(server.URL+"/", "llava")
	scores, err := o.DetectEmotions(context.Background(), &models.Image{Data: []byte("jpeg")})
	if err != nil {
		t.Fatalf("DetectEmotions() error = %v", err)
	}

	want := []emotion.Score{
		{Label: emotion.Angry, Confidence: 64},
		{Label: emotion.Scared, Confidence: 12},
	}
	if len(scores) != len(want) {
		t.Fatalf("Got %+v, want %+v", scores, want)
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("scores[%d] = %+v, want %+v", i, scores[i], want[i])
		}
	}
}

func TestDetectEmotionsServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	o := New(url, "llava")
	_, err := o.DetectEmotions(context.Background(), &models.Image{Data: []byte{1}})
	var de *providers.DetectionError
	if !errors.As(err, &de) || de.Provider != "ollama" {
		t.Errorf("error = %v, want ollama DetectionError", err)
	}
}

func TestDetectEmotionsWithoutData(t *testing.T) {
	o := New("http://localhost:11434", "llava")
	if _, err := o.DetectEmotions(context.Background(), &models.Image{}); err == nil {
		t.Error("Expected error for empty image data")
	}
}
