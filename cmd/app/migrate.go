package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tareas-api/internal/config"
	"github.com/BuzzLyutic/tareas-api/internal/store"
	"github.com/BuzzLyutic/tareas-api/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
		if err != nil {
			return err
		}
		defer log.Sync()

		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}

		switch direction {
		case "up":
			err = store.Migrate(cfg.Database.URL, log)
		case "down":
			err = store.Rollback(cfg.Database.URL, log)
		default:
			err = fmt.Errorf("unknown direction %q", direction)
		}
		if err != nil {
			log.Error("migration failed", zap.String("direction", direction), zap.Error(err))
		}
		return err
	},
}
