// Command carcompare searches, scores and compares cars from the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"carcompare-api/internal/app"
	"carcompare-api/internal/config"
)

var (
	noColor  bool
	logLevel string

	stack *app.App
)

var rootCmd = &cobra.Command{
	Use:   "carcompare",
	Short: "Search, score and compare cars",
	Long: `carcompare looks cars up in the seed catalog, the live cars API and the
heuristic synthesizer, scores them against your preferences and compares
a selection across eco, sport and family profiles.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: app.ParseLevel(logLevel)}))

		a, err := app.New(cmd.Context(), config.Load(), app.Options{Retries: -1}, logger)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		stack = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stack != nil {
			stack.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "log level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
