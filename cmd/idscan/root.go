package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/idscan/internal/config"
	"github.com/JaimeStill/idscan/internal/detection"
	"github.com/JaimeStill/idscan/internal/extraction"
	"github.com/JaimeStill/idscan/internal/infrastructure"
	"github.com/JaimeStill/idscan/internal/recognition"
	"github.com/JaimeStill/idscan/pkg/lifecycle"
)

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "idscan",
		Short: "Extract the fields of a Turkish identity card image",
		Long: `idscan detects the identity number, surname, name, and birth date
regions on a card image, reads each region, and prints the fields as JSON.

The detector and recognizer sidecars are configured through config.toml,
its config.<IDSCAN_ENV>.toml overlay, and IDSCAN_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringP("config", "c", config.BaseConfigFile, "Path to the base config file")

	root.AddCommand(
		newExtractCmd(),
		newDetectCmd(),
		newVersionCmd(),
	)
	return root
}

// runner holds a started pipeline for a single command invocation.
type runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	lc       *lifecycle.Coordinator
	pipeline *extraction.Pipeline
}

// newRunner loads configuration and starts the model clients. An unreachable
// detector or recognizer fails here, before any image is read.
func newRunner(cmd *cobra.Command) (*runner, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := infrastructure.NewLogger(&cfg.Log, os.Stderr)
	lc := lifecycle.New()

	detector := detection.New(&cfg.Detector, logger)
	if err := detector.Start(lc); err != nil {
		return nil, err
	}

	recognizer, err := recognition.New(lc.Context(), &cfg.Recognizer, logger)
	if err != nil {
		return nil, err
	}
	if err := recognizer.Start(lc); err != nil {
		return nil, err
	}

	r := &runner{
		cfg:      cfg,
		logger:   logger,
		lc:       lc,
		pipeline: extraction.New(&cfg.Pipeline, detector, recognizer, logger, extraction.NewMetrics(nil)),
	}

	if err := lc.WaitForStartup(); err != nil {
		r.close()
		return nil, err
	}
	return r, nil
}

func (r *runner) close() {
	if err := r.lc.Shutdown(r.cfg.ShutdownTimeoutDuration()); err != nil {
		r.logger.Warn("shutdown incomplete", "error", err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
