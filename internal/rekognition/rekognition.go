package rekognition

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

const providerName = "rekognition"

// Client is the part of the Rekognition API the oracle calls.
type Client interface {
	DetectFaces(
		ctx context.Context,
		params *rekognition.DetectFacesInput,
		optFns ...func(*rekognition.Options),
	) (*rekognition.DetectFacesOutput, error)
}

// Rekognition is an oracle backed by AWS Rekognition DetectFaces
type Rekognition struct {
	client Client
}

// New returns a new Rekognition oracle
func New(client Client) *Rekognition {
	return &Rekognition{client: client}
}

func (r *Rekognition) Name() string {
	return providerName
}

// DetectEmotions asks Rekognition for all face attributes and returns the
// emotions of the first face. Pictures in a bucket are passed by reference.
func (r *Rekognition) DetectEmotions(ctx context.Context, img *models.Image) ([]emotion.Score, error) {
	input := &rekognition.DetectFacesInput{
		Image:      imageFor(img),
		Attributes: []types.Attribute{types.AttributeAll},
	}

	out, err := r.client.DetectFaces(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			slog.Error("Rekognition request failed", "ref", img.Ref.String(), "code", apiErr.ErrorCode(), "message", apiErr.ErrorMessage())
		}
		return nil, &providers.DetectionError{Provider: providerName, Err: err}
	}

	if len(out.FaceDetails) == 0 {
		return nil, providers.ErrNoFace
	}

	face := out.FaceDetails[0]
	scores := make([]emotion.Score, 0, len(face.Emotions))
	for _, e := range face.Emotions {
		scores = append(scores, emotion.Score{
			Label:      labelFor(e.Type),
			Confidence: float64(aws.ToFloat32(e.Confidence)),
		})
	}

	slog.Debug("Rekognition detected faces", "ref", img.Ref.String(), "faces", len(out.FaceDetails), "emotions", len(scores))
	return scores, nil
}

func imageFor(img *models.Image) *types.Image {
	if !img.Ref.IsLocal() {
		return &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(img.Ref.Bucket),
				Name:   aws.String(img.Ref.Key),
			},
		}
	}
	return &types.Image{Bytes: img.Data}
}

// labelFor maps Rekognition's vocabulary onto the button identifiers.
// FEAR is what the "Scared" button means; everything else keeps its name.
func labelFor(name types.EmotionName) emotion.Label {
	if name == types.EmotionNameFear {
		return emotion.Scared
	}
	return emotion.Normalize(string(name))
}
