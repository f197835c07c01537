package objectstore

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lehigh-university-libraries/empathy/internal/models"
)

// Lister enumerates the pictures to play.
type Lister interface {
	List(ctx context.Context) iter.Seq2[models.ImageRef, error]
}

// S3Lister lists the objects under a bucket prefix.
type S3Lister struct {
	Client s3.ListObjectsV2APIClient
	Bucket string
	Prefix string
}

// NewS3Lister creates a lister for bucket/prefix.
func NewS3Lister(client s3.ListObjectsV2APIClient, bucket, prefix string) *S3Lister {
	return &S3Lister{Client: client, Bucket: bucket, Prefix: prefix}
}

// List pages through the bucket lazily. Folder placeholder keys are skipped.
// Iteration stops after the first error is yielded.
func (l *S3Lister) List(ctx context.Context) iter.Seq2[models.ImageRef, error] {
	return func(yield func(models.ImageRef, error) bool) {
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(l.Bucket),
		}
		if l.Prefix != "" {
			input.Prefix = aws.String(l.Prefix)
		}

		paginator := s3.NewListObjectsV2Paginator(l.Client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(models.ImageRef{}, fmt.Errorf("failed to list s3://%s/%s: %w", l.Bucket, l.Prefix, err))
				return
			}
			slog.Debug("Listed page", "bucket", l.Bucket, "prefix", l.Prefix, "objects", len(page.Contents))

			for _, obj := range page.Contents {
				key := aws.ToString(obj.Key)
				if key == "" || strings.HasSuffix(key, "/") {
					continue
				}
				ref := models.ImageRef{
					Bucket: l.Bucket,
					Key:    key,
					Size:   aws.ToInt64(obj.Size),
				}
				if !yield(ref, nil) {
					return
				}
			}
		}
	}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// DirLister lists picture files below a local directory in lexical order.
type DirLister struct {
	Root string
}

func NewDirLister(root string) *DirLister {
	return &DirLister{Root: root}
}

func (l *DirLister) List(ctx context.Context) iter.Seq2[models.ImageRef, error] {
	return func(yield func(models.ImageRef, error) bool) {
		stopped := false
		err := filepath.WalkDir(l.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			if !yield(models.ImageRef{Key: path, Size: info.Size()}, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield(models.ImageRef{}, fmt.Errorf("failed to walk %s: %w", l.Root, err))
		}
	}
}
