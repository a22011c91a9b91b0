package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/logger"
	"quiz-runner/internal/transport/terminal"
)

// NewPlayCmd runs a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath)
		},
	}
}

func runPlay(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("setup failed")
		return err
	}
	defer d.Close()

	ui := terminal.NewUI(os.Stdout)
	opts := append(controllerOptions(cfg), app.WithLogger(log))
	ctrl := app.NewController(d.source, d.best, ui, opts...)

	err = terminal.Run(ctx, ctrl, os.Stdin, ui)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
