package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/rvenkatesh/interview-grader/internal/logger"
	"github.com/rvenkatesh/interview-grader/internal/report"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowReport    = "Show full report"
	PromptReportByTopic = "Report by topic"
	PromptReportToFile  = "Dump report to file"
	PromptExit          = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReport, PromptReportByTopic, PromptReportToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run <transcript-file>",
	Short: "Evaluate a single interview transcript file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "print the report as JSON and exit without the interactive menu")
	runCmd.Flags().StringP("output", "o", "", "write the report JSON to this file")
}

// run is the main command for the cli.
func run(cmd *cobra.Command, transcriptFile string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview-grader", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	raw, err := os.ReadFile(transcriptFile)
	if err != nil {
		logger.Fatal("reading transcript file", zap.Error(err))
	}

	normalizer := newNormalizer(config.Transcript, logger)
	segmenter := newSegmenter(config.Transcript)

	sentences, err := normalizer.Sentences(ctx, string(raw))
	if err != nil {
		logger.Fatal("normalizing transcript", zap.Error(err))
	}

	pairs := segmenter.Segment(sentences)
	if len(pairs) == 0 {
		logger.Info("exiting", zap.String("reason", "no questions found in transcript"))
		return
	}

	logger.Info("extracted question/answer pairs", zap.Int("count", len(pairs)))

	assembler, err := newAssembler(ctx, config, logger)
	if err != nil {
		logger.Fatal("building evaluation pipeline", zap.Error(err))
	}

	rep, err := assembler.Evaluate(ctx, transcriptFile, pairs)
	if err != nil {
		logger.Fatal("evaluating transcript", zap.Error(err))
	}

	logger.Info("evaluation finished",
		zap.Float64("total_score", rep.AverageScore),
		zap.Int("results", len(rep.Results)),
	)

	if output := cmd.Flag("output").Value.String(); output != "" {
		if err := reportToFile(rep, output); err != nil {
			logger.Fatal("writing report", zap.Error(err))
		}
		logger.Info("wrote report", zap.String("filename", output))
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		pretty, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Println(string(pretty))
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, rep, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, rep *report.Report, logger *zap.Logger) error {
	switch action {
	case PromptShowReport:
		pretty, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptReportByTopic:
		pretty, _ := json.MarshalIndent(rep.ByTopic(), "", "  ")
		logger.Info(string(pretty), zap.Int("results count", len(rep.Results)))
		return nil
	case PromptReportToFile:
		filename, err := reportToTmpFile(rep)
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func reportToFile(rep *report.Report, path string) error {
	pretty, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, pretty, 0o644)
}

func reportToTmpFile(rep *report.Report) (string, error) {
	file, err := os.CreateTemp("", app+"-report-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	pretty, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}

	if _, err := file.Write(pretty); err != nil {
		return "", err
	}

	return file.Name(), nil
}
