package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/rvenkatesh/interview-grader/internal/logger"
	"github.com/rvenkatesh/interview-grader/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultListenAddr = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluation pipeline over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (overrides server.listen)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	logger.Info("starting the interview-grader server", zap.String("version", version))

	assembler, err := newAssembler(ctx, config, logger)
	if err != nil {
		logger.Fatal("building evaluation pipeline", zap.Error(err))
	}

	addr := viper.GetString("server.listen")
	if addr == "" && config.Server != nil {
		addr = config.Server.Listen
	}
	if addr == "" {
		addr = defaultListenAddr
	}

	srv := server.New(
		addr,
		newNormalizer(config.Transcript, logger),
		newSegmenter(config.Transcript),
		assembler,
		logger,
	)

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
