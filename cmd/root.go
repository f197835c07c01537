package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/empathy/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool

	region  string
	bucket  string
	prefix  string
	dir     string
	baseURL string
	oracle  string
	model   string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "empathy",
		Short: "Guess the emotion on a face, then check your answer against a vision API",
		Long: `Empathy shows pictures of faces from an S3 bucket one at a time and asks
which emotion the person is exhibiting. After you pick one, a cloud vision
service (AWS Rekognition, Google Cloud Vision or Gemini) rates the face and
the highest-confidence emotion is compared with your guess.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	flags.StringVar(&opts.region, "region", "", "AWS region (default "+config.DefaultRegion+")")
	flags.StringVar(&opts.bucket, "bucket", "", "S3 bucket holding the pictures")
	flags.StringVar(&opts.prefix, "prefix", "", "Only play keys starting with this prefix")
	flags.StringVar(&opts.dir, "dir", "", "Play pictures from a local directory instead of S3")
	flags.StringVar(&opts.baseURL, "base-url", "", "Public URL prefix for bucket objects (default derived from the bucket); \"none\" fetches with GetObject")
	flags.StringVar(&opts.oracle, "oracle", "", "Emotion detection service (rekognition, vision, gemini, openai or ollama)")
	flags.StringVar(&opts.model, "model", "", "Model name for the gemini, openai or ollama oracle")

	// Add subcommands
	cmd.AddCommand(newPlayCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newDetectCmd(opts))

	return cmd
}

// load builds the configuration: defaults, file, environment, then flags.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Region, o.region)
	override(&cfg.Bucket, o.bucket)
	override(&cfg.Prefix, o.prefix)
	override(&cfg.Oracle, o.oracle)
	override(&cfg.Model, o.model)
	override(&cfg.BaseURL, o.baseURL)
	if o.dir != "" {
		cfg.Source = "dir"
		cfg.Directory = o.dir
	}

	return cfg, nil
}
