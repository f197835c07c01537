package rekognition

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

type mockClient struct {
	out *rekognition.DetectFacesOutput
	err error
	in  *rekognition.DetectFacesInput
}

func (m *mockClient) DetectFaces(ctx context.Context, in *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	m.in = in
	return m.out, m.err
}

func face(emotions ...types.Emotion) types.FaceDetail {
	return types.FaceDetail{Emotions: emotions}
}

func emo(name types.EmotionName, confidence float32) types.Emotion {
	return types.Emotion{Type: name, Confidence: aws.Float32(confidence)}
}

func TestDetectEmotions(t *testing.T) {
	client := &mockClient{
		out: &rekognition.DetectFacesOutput{
			FaceDetails: []types.FaceDetail{
				face(emo(types.EmotionNameHappy, 95), emo(types.EmotionNameSad, 10), emo(types.EmotionNameFear, 2)),
				face(emo(types.EmotionNameAngry, 99)),
			},
		},
	}
	img := &models.Image{Ref: models.ImageRef{Bucket: "bucket", Key: "faces/a.jpg"}}

	scores, err := New(client).DetectEmotions(context.Background(), img)
	if err != nil {
		t.Fatalf("DetectEmotions() error = %v", err)
	}

	want := []emotion.Score{
		{Label: emotion.Happy, Confidence: 95},
		{Label: emotion.Sad, Confidence: 10},
		{Label: emotion.Scared, Confidence: 2},
	}
	if len(scores) != len(want) {
		t.Fatalf("Got %d scores, want %d (only the first face counts)", len(scores), len(want))
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("scores[%d] = %+v, want %+v", i, scores[i], want[i])
		}
	}

	if client.in.Image.S3Object == nil || aws.ToString(client.in.Image.S3Object.Name) != "faces/a.jpg" {
		t.Errorf("Expected S3 object reference, got %+v", client.in.Image)
	}
	if len(client.in.Attributes) != 1 || client.in.Attributes[0] != types.AttributeAll {
		t.Errorf("Expected ALL attributes, got %v", client.in.Attributes)
	}
}

func TestDetectEmotionsLocalBytes(t *testing.T) {
	client := &mockClient{out: &rekognition.DetectFacesOutput{FaceDetails: []types.FaceDetail{face()}}}
	img := &models.Image{Ref: models.ImageRef{Key: "/tmp/a.jpg"}, Data: []byte{0xff, 0xd8}}

	if _, err := New(client).DetectEmotions(context.Background(), img); err != nil {
		t.Fatalf("DetectEmotions() error = %v", err)
	}
	if client.in.Image.S3Object != nil || len(client.in.Image.Bytes) != 2 {
		t.Errorf("Expected inline bytes, got %+v", client.in.Image)
	}
}

func TestDetectEmotionsNoFace(t *testing.T) {
	client := &mockClient{out: &rekognition.DetectFacesOutput{}}
	img := &models.Image{Ref: models.ImageRef{Bucket: "b", Key: "k"}}

	_, err := New(client).DetectEmotions(context.Background(), img)
	if !errors.Is(err, providers.ErrNoFace) {
		t.Errorf("error = %v, want ErrNoFace", err)
	}
}

func TestDetectEmotionsServiceError(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	client := &mockClient{err: apiErr}
	img := &models.Image{Ref: models.ImageRef{Bucket: "b", Key: "k"}}

	_, err := New(client).DetectEmotions(context.Background(), img)
	var de *providers.DetectionError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want DetectionError", err)
	}
	if de.Provider != "rekognition" {
		t.Errorf("Provider = %s", de.Provider)
	}
	if !errors.Is(err, apiErr) {
		t.Error("Expected the API error to be wrapped")
	}
}

func TestLabelFor(t *testing.T) {
	tests := map[types.EmotionName]emotion.Label{
		types.EmotionNameFear:      emotion.Scared,
		types.EmotionNameSurprised: emotion.Surprised,
		types.EmotionNameCalm:      emotion.Calm,
		types.EmotionNameUnknown:   emotion.Unknown,
	}
	for in, want := range tests {
		if got := labelFor(in); got != want {
			t.Errorf("labelFor(%s) = %s, want %s", in, got, want)
		}
	}
}
