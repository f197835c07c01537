package vision

import (
	"context"
	"fmt"
	"log/slog"

	visionapi "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

const providerName = "vision"

// Annotator is the part of the Cloud Vision client the oracle calls.
type Annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// Vision is an oracle backed by Google Cloud Vision face detection.
// Cloud Vision reports likelihood buckets, which are mapped onto 0-100 confidences.
type Vision struct {
	client Annotator
}

// NewClient dials Cloud Vision with application default credentials.
func NewClient(ctx context.Context) (*Vision, error) {
	client, err := visionapi.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return New(client), nil
}

func New(client Annotator) *Vision {
	return &Vision{client: client}
}

func (v *Vision) Name() string {
	return providerName
}

func (v *Vision) Close() error {
	return v.client.Close()
}

func (v *Vision) DetectEmotions(ctx context.Context, img *models.Image) ([]emotion.Score, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: imageFor(img),
			Features: []*visionpb.Feature{{
				Type:       visionpb.Feature_FACE_DETECTION,
				MaxResults: 1,
			}},
		}},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, &providers.DetectionError{Provider: providerName, Err: err}
	}
	if len(resp.GetResponses()) == 0 {
		return nil, &providers.DetectionError{Provider: providerName, Err: fmt.Errorf("empty response")}
	}

	res := resp.GetResponses()[0]
	if st := res.GetError(); st != nil && st.GetCode() != 0 {
		return nil, &providers.DetectionError{Provider: providerName, Err: fmt.Errorf("code %d: %s", st.GetCode(), st.GetMessage())}
	}

	faces := res.GetFaceAnnotations()
	if len(faces) == 0 {
		return nil, providers.ErrNoFace
	}

	face := faces[0]
	slog.Debug("Vision detected face", "ref", img.Ref.String(), "detection_confidence", face.GetDetectionConfidence())

	return []emotion.Score{
		{Label: emotion.Happy, Confidence: confidence(face.GetJoyLikelihood())},
		{Label: emotion.Sad, Confidence: confidence(face.GetSorrowLikelihood())},
		{Label: emotion.Angry, Confidence: confidence(face.GetAngerLikelihood())},
		{Label: emotion.Surprised, Confidence: confidence(face.GetSurpriseLikelihood())},
	}, nil
}

func imageFor(img *models.Image) *visionpb.Image {
	if len(img.Data) > 0 {
		return &visionpb.Image{Content: img.Data}
	}
	return &visionpb.Image{
		Source: &visionpb.ImageSource{ImageUri: "gs://" + img.Ref.Bucket + "/" + img.Ref.Key},
	}
}

func confidence(l visionpb.Likelihood) float64 {
	switch l {
	case visionpb.Likelihood_VERY_UNLIKELY:
		return 5
	case visionpb.Likelihood_UNLIKELY:
		return 25
	case visionpb.Likelihood_POSSIBLE:
		return 50
	case visionpb.Likelihood_LIKELY:
		return 75
	case visionpb.Likelihood_VERY_LIKELY:
		return 95
	default:
		return 0
	}
}
