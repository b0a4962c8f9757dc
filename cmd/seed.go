package cmd

import (
	"context"
	"log"

	"github.com/rvenkatesh/interview-grader/internal/corpus"
	"github.com/rvenkatesh/interview-grader/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed <corpus-file>",
	Short: "Load a YAML reference corpus into the similarity index",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		seed(args[0])
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seed(corpusFile string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	file, err := corpus.LoadFile(corpusFile)
	if err != nil {
		logger.Fatal("loading corpus file", zap.Error(err))
	}

	logger.Info("loaded corpus file",
		zap.String("filename", corpusFile),
		zap.String("role", file.Role),
		zap.Int("questions", len(file.Questions)),
	)

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building gemini generator", zap.Error(err))
	}

	store, err := newStore(config.Corpus, generator, logger)
	if err != nil {
		logger.Fatal("opening corpus index", zap.Error(err))
	}

	if err := store.Seed(ctx, file.Questions); err != nil {
		logger.Fatal("seeding corpus index", zap.Error(err))
	}
}
