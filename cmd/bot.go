package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	telegram "safenest/internal/api"
	"safenest/internal/container"
	"safenest/internal/infrastructure/storage"
	"safenest/internal/logger"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Telegram.Token == "" {
			return errors.New("TELEGRAM_TOKEN is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Сессии живут в памяти процесса
		appContainer := container.New(ctx, cfg, storage.NewMemorySessionRepository())

		bot, err := telegram.NewBot(cfg.Telegram.Token, appContainer)
		if err != nil {
			return err
		}

		logger.Info("bot is running")
		return bot.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
