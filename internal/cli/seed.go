package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"quiz-runner/internal/config"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/infra/postgres"
	"quiz-runner/internal/logger"
)

// NewSeedCmd stores a question set file in Postgres under a set id.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file, setID string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a question set file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file, setID)
		},
	}
	cmd.Flags().StringVar(&file, "file", "questions.json", "question set to import")
	cmd.Flags().StringVar(&setID, "set", "", "set id (defaults to quiz.set_id)")
	return cmd
}

func runSeed(ctx context.Context, configPath, file, setID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if setID == "" {
		setID = cfg.Quiz.SetID
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	questions, err := domain.ParseQuestionSet(raw)
	if err != nil {
		return err
	}

	db := openBun(cfg.Postgres.URL)
	defer db.Close()
	if err := postgres.SaveQuestionSet(ctx, db, setID, raw); err != nil {
		return err
	}
	log.Info().Str("set", setID).Int("questions", len(questions)).Msg("question set seeded")
	return nil
}
