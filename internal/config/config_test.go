package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.Region != "us-east-1" {
		t.Errorf("Region = %s", cfg.Region)
	}
	want := "https://s3.amazonaws.com/empathyprototype-deployments-mobilehub-595834428/faces/a.jpg"
	if got := cfg.ObjectURL("faces/a.jpg"); got != want {
		t.Errorf("ObjectURL() = %s, want %s", got, want)
	}
}

func TestLoadYAML(t *testing.T) {
	for _, k := range []string{"AWS_REGION", "EMPATHY_REGION", "EMPATHY_BUCKET", "EMPATHY_PREFIX", "EMPATHY_ORACLE", "EMPATHY_UI", "EMPATHY_ADDR", "EMPATHY_GUESS_TIMEOUT", "EMPATHY_MODEL", "OLLAMA_URL", "EMPATHY_BASE_URL", "EMPATHY_FETCH_TIMEOUT"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "empathy.yaml")
	content := `region: eu-west-1
bucket: faces
prefix: batch1/
oracle: gemini
ui: web
addr: ":9000"
guess_timeout: 45s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Region != "eu-west-1" || cfg.Bucket != "faces" || cfg.Prefix != "batch1/" {
		t.Errorf("Unexpected location fields: %+v", cfg)
	}
	if cfg.Oracle != "gemini" || cfg.UI != "web" || cfg.Addr != ":9000" {
		t.Errorf("Unexpected component fields: %+v", cfg)
	}
	if cfg.GuessTimeout != 45*time.Second {
		t.Errorf("GuessTimeout = %v, want 45s", cfg.GuessTimeout)
	}
	// Unset keys keep their defaults
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", cfg.FetchTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AWS_REGION":            "us-west-2",
		"EMPATHY_BUCKET":        "other",
		"GEMINI_API_KEY":        "secret",
		"EMPATHY_GUESS_TIMEOUT": "2m",
	}
	cfg := Default()
	if err := cfg.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}

	if cfg.Region != "us-west-2" {
		t.Errorf("Region = %s", cfg.Region)
	}
	if cfg.Bucket != "other" {
		t.Errorf("Bucket = %s", cfg.Bucket)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Errorf("GeminiAPIKey not read from environment")
	}
	if cfg.GuessTimeout != 2*time.Minute {
		t.Errorf("GuessTimeout = %v", cfg.GuessTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown oracle", func(c *Config) { c.Oracle = "clip" }, "unsupported oracle"},
		{"unknown ui", func(c *Config) { c.UI = "tui" }, "unsupported ui"},
		{"unknown source", func(c *Config) { c.Source = "ftp" }, "unsupported source"},
		{"dir without directory", func(c *Config) { c.Source = "dir" }, "directory is required"},
		{"s3 without bucket", func(c *Config) { c.Bucket = "" }, "bucket is required"},
		{"bad base url", func(c *Config) { c.BaseURL = "s3.amazonaws.com" }, "base_url"},
		{"negative timeout", func(c *Config) { c.GuessTimeout = -time.Second }, "guess_timeout"},
		{"negative fetch timeout", func(c *Config) { c.FetchTimeout = -time.Second }, "fetch_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestModelName(t *testing.T) {
	tests := []struct {
		oracle string
		model  string
		want   string
	}{
		{oracle: "gemini", want: "gemini-1.5-flash"},
		{oracle: "openai", want: "gpt-4o-mini"},
		{oracle: "ollama", want: "llava"},
		{oracle: "ollama", model: "llama3.2-vision", want: "llama3.2-vision"},
		{oracle: "rekognition", want: ""},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Oracle = tt.oracle
		cfg.Model = tt.model
		if got := cfg.ModelName(); got != tt.want {
			t.Errorf("ModelName() for %s/%q = %q, want %q", tt.oracle, tt.model, got, tt.want)
		}
	}
}

func TestApplyEnvInvalidDuration(t *testing.T) {
	env := map[string]string{
		"EMPATHY_GUESS_TIMEOUT": "soon",
		"EMPATHY_FETCH_TIMEOUT": "10s",
	}
	cfg := Default()
	err := cfg.applyEnv(func(k string) string { return env[k] })
	if err == nil || !strings.Contains(err.Error(), "EMPATHY_GUESS_TIMEOUT") {
		t.Errorf("applyEnv() error = %v, want EMPATHY_GUESS_TIMEOUT error", err)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.FetchTimeout)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("EMPATHY_GUESS_TIMEOUT", "thirty")
	if _, err := Load(""); err == nil {
		t.Error("Expected error for unparsable EMPATHY_GUESS_TIMEOUT")
	}
}

func TestObjectURLFollowsBucket(t *testing.T) {
	clearEnv := func(t *testing.T) {
		for _, k := range []string{"EMPATHY_BUCKET", "EMPATHY_BASE_URL", "EMPATHY_GUESS_TIMEOUT", "EMPATHY_FETCH_TIMEOUT"} {
			t.Setenv(k, "")
		}
	}

	tests := []struct {
		name string
		file string
		env  map[string]string
		want string
	}{
		{
			name: "default bucket",
			want: "https://s3.amazonaws.com/" + DefaultBucket + "/face.jpg",
		},
		{
			name: "bucket from environment",
			env:  map[string]string{"EMPATHY_BUCKET": "mybucket"},
			want: "https://s3.amazonaws.com/mybucket/face.jpg",
		},
		{
			name: "bucket from file",
			file: "bucket: filebucket\n",
			want: "https://s3.amazonaws.com/filebucket/face.jpg",
		},
		{
			name: "environment bucket over file bucket",
			file: "bucket: filebucket\n",
			env:  map[string]string{"EMPATHY_BUCKET": "envbucket"},
			want: "https://s3.amazonaws.com/envbucket/face.jpg",
		},
		{
			name: "explicit base url in file",
			file: "bucket: filebucket\nbase_url: https://cdn.example.edu/faces/\n",
			want: "https://cdn.example.edu/faces/face.jpg",
		},
		{
			name: "environment base url over bucket",
			env:  map[string]string{"EMPATHY_BUCKET": "mybucket", "EMPATHY_BASE_URL": "http://localhost:9000/mirror"},
			want: "http://localhost:9000/mirror/face.jpg",
		},
		{
			name: "none fetches with GetObject",
			env:  map[string]string{"EMPATHY_BASE_URL": NoBaseURL},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "empathy.yaml")
				if err := os.WriteFile(path, []byte(tt.file), 0644); err != nil {
					t.Fatal(err)
				}
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got := cfg.ObjectURL("face.jpg"); got != tt.want {
				t.Errorf("ObjectURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
