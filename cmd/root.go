package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rvenkatesh/interview-grader/internal/ai"
	"github.com/rvenkatesh/interview-grader/internal/ai/gemini"
	"github.com/rvenkatesh/interview-grader/internal/corpus"
	"github.com/rvenkatesh/interview-grader/internal/report"
	"github.com/rvenkatesh/interview-grader/internal/secrets"
	"github.com/rvenkatesh/interview-grader/internal/transcript"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "interview-grader"
)

type Config struct {
	Transcript *TranscriptConfig `mapstructure:"transcript"`
	Corpus     *CorpusConfig     `mapstructure:"corpus"`
	AI         *AIConfig         `mapstructure:"ai"`
	Report     *ReportConfig     `mapstructure:"report"`
	Server     *ServerConfig     `mapstructure:"server"`
}

type TranscriptConfig struct {
	// QuestionStarters replaces the built-in starter set entirely.
	QuestionStarters []string `mapstructure:"question-starters"`
	// ExtraQuestionStarters extends the built-in set without replacing it.
	ExtraQuestionStarters []string `mapstructure:"extra-question-starters"`
	PunctuatorURL         string   `mapstructure:"punctuator-url"`
}

type CorpusConfig struct {
	Path           string `mapstructure:"path"`
	Collection     string `mapstructure:"collection"`
	EmbeddingModel string `mapstructure:"embedding-model"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ReportConfig struct {
	PairDelay time.Duration `mapstructure:"pair-delay"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-grader evaluates interview transcripts against a reference question corpus",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-grader.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is not needed for the version command.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// newSegmenter builds the question classifier and segmenter from the
// transcript configuration.
func newSegmenter(cfg *TranscriptConfig) *transcript.Segmenter {
	var starters []string
	if cfg != nil {
		starters = cfg.QuestionStarters
		if len(starters) == 0 && len(cfg.ExtraQuestionStarters) > 0 {
			starters = append(transcript.DefaultStarters(), cfg.ExtraQuestionStarters...)
		}
	}

	return transcript.NewSegmenter(transcript.NewClassifier(starters))
}

func newNormalizer(cfg *TranscriptConfig, logger *zap.Logger) *transcript.Normalizer {
	var punctuator transcript.Punctuator
	if cfg != nil && strings.TrimSpace(cfg.PunctuatorURL) != "" {
		punctuator = transcript.NewHTTPPunctuator(cfg.PunctuatorURL, logger)
	}

	return transcript.NewNormalizer(punctuator)
}

// newGenerator resolves the API key and builds the shared Gemini client used
// by both the grader and the corpus embeddings.
func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Generator, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required under the ai section")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
}

func newStore(cfg *CorpusConfig, generator *gemini.Generator, logger *zap.Logger) (*corpus.Store, error) {
	var path, collection, embeddingModel string
	if cfg != nil {
		path = cfg.Path
		collection = cfg.Collection
		embeddingModel = cfg.EmbeddingModel
	}

	return corpus.Open(path, collection, generator.EmbeddingFunc(embeddingModel), logger)
}

// newAssembler wires the full evaluation pipeline: the similarity index, the
// grader and the report assembler on top of them.
func newAssembler(ctx context.Context, config *Config, logger *zap.Logger) (*report.Assembler, error) {
	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building gemini generator: %w", err)
	}

	store, err := newStore(config.Corpus, generator, logger)
	if err != nil {
		return nil, fmt.Errorf("opening corpus index: %w", err)
	}

	var maxLogLength int
	if config.AI != nil && config.AI.Gemini != nil {
		maxLogLength = config.AI.Gemini.MaxLogLength
	}

	var grader ai.Grader = gemini.NewGrader(generator, maxLogLength, logger)

	var pairDelay time.Duration
	if config.Report != nil {
		pairDelay = config.Report.PairDelay
	}

	return report.NewAssembler(store, grader, pairDelay, logger), nil
}
