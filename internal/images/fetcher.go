package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/lehigh-university-libraries/empathy/internal/models"
)

const (
	// DisplayWidth and DisplayHeight bound the picture shown in the window.
	DisplayWidth  = 500
	DisplayHeight = 380

	maxImageBytes = 10 * 1024 * 1024
)

// ObjectGetter is the part of the S3 client the fetcher uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher retrieves and decodes pictures from a public URL, S3, or disk
type Fetcher struct {
	HTTPClient *http.Client
	S3         ObjectGetter
	// URLFor maps a key to its public URL. Nil or "" falls back to S3.
	URLFor func(key string) string
}

// NewFetcher creates a new image fetcher
func NewFetcher(client ObjectGetter, urlFor func(string) string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		S3:     client,
		URLFor: urlFor,
	}
}

// Fetch downloads and decodes the picture named by ref.
func (f *Fetcher) Fetch(ctx context.Context, ref models.ImageRef) (*models.Image, error) {
	data, err := f.read(ctx, ref)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ref, err)
	}

	slog.Debug("Image fetched", "ref", ref.String(), "format", format, "bytes", len(data),
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	return &models.Image{
		Ref:     ref,
		Data:    data,
		Format:  format,
		Display: imaging.Fit(img, DisplayWidth, DisplayHeight, imaging.Lanczos),
	}, nil
}

func (f *Fetcher) read(ctx context.Context, ref models.ImageRef) ([]byte, error) {
	if ref.IsLocal() {
		data, err := os.ReadFile(ref.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return data, nil
	}

	if f.URLFor != nil {
		if url := f.URLFor(ref.Key); url != "" {
			return f.download(ctx, url)
		}
	}

	if f.S3 == nil {
		return nil, fmt.Errorf("no way to fetch %s: no base URL or S3 client", ref)
	}
	out, err := f.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", ref, err)
	}
	defer out.Body.Close()

	return readLimited(out.Body)
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "binary/") && ct != "application/octet-stream" {
		return nil, fmt.Errorf("unexpected content type %q from %s", ct, url)
	}

	return readLimited(resp.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image too large (max %d bytes)", maxImageBytes)
	}
	return data, nil
}
