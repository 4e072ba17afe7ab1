package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/sightings-map-service/internal/adapter/source"
	"github.com/couchcryptid/sightings-map-service/internal/domain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sightingsctl",
		Short:        "Inspect and generate wildlife sightings datasets.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().String("now", "", "evaluation time as YYYY-MM-DD or RFC 3339 (default: current time)")

	root.AddCommand(newClassifyCmd(), newFilterCmd(), newSeedCmd())
	return root
}

// evaluationTime reads --now, falling back to the current time.
func evaluationTime(cmd *cobra.Command) (time.Time, error) {
	v, _ := cmd.Flags().GetString("now")
	if v == "" {
		return time.Now().UTC(), nil
	}
	t, ok := domain.Sighting{Date: v}.ObservedAt()
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --now %q", v)
	}
	return t, nil
}

func loadFile(ctx context.Context, path string) ([]domain.Sighting, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	return source.NewFile(path).FetchAll(ctx)
}

func stderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
