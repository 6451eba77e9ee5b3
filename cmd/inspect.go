package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"safenest/internal/container"
	"safenest/internal/domain/entity"
	"safenest/internal/infrastructure/storage"
)

var (
	flagNotes       string
	flagJSON        bool
	flagConcurrency int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Inspect a batch of property photos and print the report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		images, err := readImages(args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if flagConcurrency > 0 {
			cfg.Pipeline.Concurrency = flagConcurrency
		}
		c := container.New(ctx, cfg, storage.NewMemorySessionRepository())
		report := c.Pipeline.Run(ctx, images, flagNotes)

		out := cmd.OutOrStdout()
		if flagJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return renderReport(out, report)
	},
}

// readImages читает файлы целиком; имя изображения это базовое имя файла
func readImages(paths []string) ([]entity.ImageInput, error) {
	images := make([]entity.ImageInput, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		images = append(images, entity.ImageInput{Name: filepath.Base(p), Data: data})
	}
	return images, nil
}

func init() {
	inspectCmd.Flags().StringVar(&flagNotes, "notes", "", "inspector notes passed to the analysis backends")
	inspectCmd.Flags().BoolVar(&flagJSON, "json", false, "emit the report as JSON")
	inspectCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "images analysed in parallel (0 = config value)")
	rootCmd.AddCommand(inspectCmd)
}
