// Preset sync: stores every tree of the generated presets file as a preset
// tree record. Re-running replaces the previous presets in place.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/udisondev/ttmgo/internal/backend"
	"github.com/udisondev/ttmgo/internal/config"
	"github.com/udisondev/ttmgo/internal/preset"
)

const defaultConfigPath = "config/ttm.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadTTM(config.Path(defaultConfigPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	path := cfg.Presets.PresetsFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	return syncFile(ctx, cfg.Database, path)
}

func syncFile(ctx context.Context, dbCfg config.DatabaseConfig, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening presets: %w", err)
	}
	defer f.Close()

	entries, err := preset.Load(f)
	if err != nil {
		return fmt.Errorf("loading presets %s: %w", path, err)
	}

	b, err := backend.Open(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer b.Close()

	start := time.Now()
	n, err := preset.Sync(ctx, b.Store, entries)
	if err != nil {
		return err
	}
	slog.Info("presets synced", "file", path, "trees", n, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
