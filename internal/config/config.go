package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRegion = "us-east-1"
	DefaultBucket = "empathyprototype-deployments-mobilehub-595834428"
	DefaultAddr   = ":8888"
	DefaultOllama = "http://localhost:11434"

	// NoBaseURL as base_url fetches bucket objects with GetObject.
	NoBaseURL = "none"
)

// defaultModels is the model each LLM oracle uses when none is configured.
var defaultModels = map[string]string{
	"gemini": "gemini-1.5-flash",
	"openai": "gpt-4o-mini",
	"ollama": "llava",
}

// Config holds everything the lister, fetcher, oracle and window need.
type Config struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	// Source is "s3" or "dir". Directory is read when Source is "dir".
	Source    string `yaml:"source"`
	Directory string `yaml:"directory"`

	// BaseURL serves public copies of bucket objects. Empty derives the public
	// S3 URL of Bucket; NoBaseURL fetches with GetObject.
	BaseURL string `yaml:"base_url"`

	Oracle       string `yaml:"oracle"`
	Model        string `yaml:"model"`
	OllamaURL    string `yaml:"ollama_url"`
	GeminiAPIKey string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`

	UI   string `yaml:"ui"`
	Addr string `yaml:"addr"`

	GuessTimeout time.Duration `yaml:"guess_timeout"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// Default returns the configuration the demo was built around.
func Default() *Config {
	return &Config{
		Region:       DefaultRegion,
		Bucket:       DefaultBucket,
		Source:       "s3",
		Oracle:       "rekognition",
		OllamaURL:    DefaultOllama,
		UI:           "desktop",
		Addr:         DefaultAddr,
		FetchTimeout: 30 * time.Second,
	}
}

// Load builds a Config from defaults, then the YAML file at path (if any),
// then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.Region, "EMPATHY_REGION", "AWS_REGION")
	set(&c.Bucket, "EMPATHY_BUCKET")
	set(&c.Prefix, "EMPATHY_PREFIX")
	set(&c.Source, "EMPATHY_SOURCE")
	set(&c.Directory, "EMPATHY_DIRECTORY")
	set(&c.BaseURL, "EMPATHY_BASE_URL")
	set(&c.Oracle, "EMPATHY_ORACLE")
	set(&c.Model, "EMPATHY_MODEL")
	set(&c.OllamaURL, "OLLAMA_URL")
	set(&c.GeminiAPIKey, "GEMINI_API_KEY")
	set(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	set(&c.UI, "EMPATHY_UI")
	set(&c.Addr, "EMPATHY_ADDR")

	var errs []error
	duration := func(dst *time.Duration, key string) {
		v := getenv(key)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*dst = d
	}
	duration(&c.GuessTimeout, "EMPATHY_GUESS_TIMEOUT")
	duration(&c.FetchTimeout, "EMPATHY_FETCH_TIMEOUT")

	return errors.Join(errs...)
}

// Validate rejects values no component understands.
func (c *Config) Validate() error {
	var errs []error
	switch c.Source {
	case "s3":
		if c.Bucket == "" {
			errs = append(errs, errors.New("bucket is required for the s3 source"))
		}
	case "dir":
		if c.Directory == "" {
			errs = append(errs, errors.New("directory is required for the dir source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported source: %s", c.Source))
	}

	switch c.Oracle {
	case "rekognition", "vision", "gemini", "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("unsupported oracle: %s", c.Oracle))
	}

	switch c.UI {
	case "desktop", "web":
	default:
		errs = append(errs, fmt.Errorf("unsupported ui: %s", c.UI))
	}

	if c.BaseURL != "" && c.BaseURL != NoBaseURL && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("base_url must be an http(s) URL: %s", c.BaseURL))
	}
	if c.GuessTimeout < 0 {
		errs = append(errs, errors.New("guess_timeout cannot be negative"))
	}
	if c.FetchTimeout < 0 {
		errs = append(errs, errors.New("fetch_timeout cannot be negative"))
	}

	return errors.Join(errs...)
}

// ModelName is the configured model, or the default for the LLM oracle in use.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Oracle]
}

// ObjectURL is the public URL for key, or "" when objects are fetched with GetObject.
func (c *Config) ObjectURL(key string) string {
	base := c.BaseURL
	switch base {
	case NoBaseURL:
		return ""
	case "":
		if c.Bucket == "" {
			return ""
		}
		base = "https://s3.amazonaws.com/" + c.Bucket
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
