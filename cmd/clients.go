package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lehigh-university-libraries/empathy/internal/config"
	"github.com/lehigh-university-libraries/empathy/internal/gemini"
	"github.com/lehigh-university-libraries/empathy/internal/images"
	"github.com/lehigh-university-libraries/empathy/internal/objectstore"
	"github.com/lehigh-university-libraries/empathy/internal/ollama"
	"github.com/lehigh-university-libraries/empathy/internal/openai"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
	rek "github.com/lehigh-university-libraries/empathy/internal/rekognition"
	"github.com/lehigh-university-libraries/empathy/internal/vision"
)

// clients holds the collaborators built from one Config.
type clients struct {
	lister  objectstore.Lister
	fetcher *images.Fetcher
	oracle  providers.Oracle
	close   func()
}

func newClients(ctx context.Context, cfg *config.Config) (*clients, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loadAWS := awsLoader(ctx, cfg.Region)

	c := &clients{close: func() {}}

	lister, s3Client, err := newLister(cfg, loadAWS)
	if err != nil {
		return nil, err
	}
	c.lister = lister

	var getter images.ObjectGetter
	if s3Client != nil {
		getter = s3Client
	}
	c.fetcher = images.NewFetcher(getter, cfg.ObjectURL, cfg.FetchTimeout)

	oracle, err := newOracle(ctx, cfg, loadAWS)
	if err != nil {
		return nil, err
	}
	c.oracle = oracle
	if v, ok := oracle.(*vision.Vision); ok {
		c.close = func() { _ = v.Close() }
	}

	return c, nil
}

// awsLoader loads the shared AWS config once, on first use.
func awsLoader(ctx context.Context, region string) func() (aws.Config, error) {
	var (
		once sync.Once
		cfg  aws.Config
		err  error
	)
	return func() (aws.Config, error) {
		once.Do(func() {
			cfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
			if err != nil {
				err = fmt.Errorf("failed to load AWS config: %w", err)
			}
		})
		return cfg, err
	}
}

func newLister(cfg *config.Config, loadAWS func() (aws.Config, error)) (objectstore.Lister, *s3.Client, error) {
	if cfg.Source == "dir" {
		return objectstore.NewDirLister(cfg.Directory), nil, nil
	}
	ac, err := loadAWS()
	if err != nil {
		return nil, nil, err
	}
	client := s3.NewFromConfig(ac)
	return objectstore.NewS3Lister(client, cfg.Bucket, cfg.Prefix), client, nil
}

func newOracle(ctx context.Context, cfg *config.Config, loadAWS func() (aws.Config, error)) (providers.Oracle, error) {
	switch cfg.Oracle {
	case "rekognition":
		ac, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return rek.New(rekognition.NewFromConfig(ac)), nil
	case "vision":
		return vision.NewClient(ctx)
	case "gemini":
		return gemini.New(cfg.GeminiAPIKey, cfg.ModelName()), nil
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, cfg.ModelName()), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.ModelName()), nil
	default:
		return nil, fmt.Errorf("unsupported oracle: %s", cfg.Oracle)
	}
}
