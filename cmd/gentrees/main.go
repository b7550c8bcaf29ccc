// Preset generator: converts a local raidbots talents.json into the presets
// file and the node order file read by the desktop tree editor.
//
// Usage:
//
//	go run ./cmd/gentrees                    # uses config/ttm.yaml or $TTM_CONFIG
//	TTM_CONFIG=dev.yaml go run ./cmd/gentrees
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/ttmgo/internal/atlas"
	"github.com/udisondev/ttmgo/internal/codec"
	"github.com/udisondev/ttmgo/internal/config"
	"github.com/udisondev/ttmgo/internal/model"
	"github.com/udisondev/ttmgo/internal/source/raidbots"
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

	start := time.Now()
	specs, err := loadSpecs(cfg.Generator)
	if err != nil {
		return err
	}
	slog.Info("parsed talents", "file", cfg.Generator.TalentsJSON, "specs", len(specs))

	trees, err := buildTrees(ctx, specs, cfg.Generator.Workers)
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg.Presets, specs, trees); err != nil {
		return err
	}
	slog.Info("presets written",
		"presets", cfg.Presets.PresetsFile,
		"node_orders", cfg.Presets.NodeOrderFile,
		"trees", len(trees),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if cfg.Atlas.Enabled {
		if err := packIcons(cfg.Atlas, trees); err != nil {
			return err
		}
	}
	return nil
}

func loadSpecs(gen config.GeneratorConfig) ([]raidbots.Spec, error) {
	f, err := os.Open(gen.TalentsJSON)
	if err != nil {
		return nil, fmt.Errorf("opening talents json: %w", err)
	}
	defer f.Close()

	specs, err := raidbots.Parse(f, raidbots.Geometry{
		ClassOffsetX: gen.ClassOffsetX,
		SpecOffsetX:  gen.SpecOffsetX,
		OffsetY:      gen.OffsetY,
		CellSize:     gen.CellSize,
	})
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(specs, func(s raidbots.Spec) bool {
		return (len(gen.Classes) > 0 && !slices.Contains(gen.Classes, s.Class)) ||
			(len(gen.Specs) > 0 && !slices.Contains(gen.Specs, s.Spec))
	}), nil
}

// buildTrees normalizes every spec in parallel. The result holds the class
// and the spec tree of every spec, in spec order.
func buildTrees(ctx context.Context, specs []raidbots.Spec, workers int) ([]*model.TalentTree, error) {
	out := make([]*model.TalentTree, 2*len(specs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			class, spec, err := specs[i].Trees()
			if err != nil {
				return err
			}
			for _, t := range []*model.TalentTree{class, spec} {
				if err := t.Validate(); err != nil {
					return err
				}
			}
			out[2*i], out[2*i+1] = class, spec
			slog.Debug("spec normalized", "class", specs[i].Class, "spec", specs[i].Spec,
				"class_talents", len(class.Talents), "spec_talents", len(spec.Talents))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building trees: %w", err)
	}
	return out, nil
}

func writeOutputs(p config.PresetsConfig, specs []raidbots.Spec, trees []*model.TalentTree) error {
	for _, t := range trees {
		t.Version = p.Version
	}
	if err := createFile(p.PresetsFile, func(f *os.File) error {
		return codec.WritePresets(f, p.Version, trees)
	}); err != nil {
		return fmt.Errorf("writing presets: %w", err)
	}

	orders := make([]codec.NodeOrder, len(specs))
	for i := range specs {
		orders[i] = specs[i].Order
	}
	if err := createFile(p.NodeOrderFile, func(f *os.File) error {
		return codec.WriteNodeOrders(f, orders)
	}); err != nil {
		return fmt.Errorf("writing node orders: %w", err)
	}
	return nil
}

func packIcons(cfg config.AtlasConfig, trees []*model.TalentTree) error {
	var files []string
	for _, t := range trees {
		for _, talent := range t.Talents {
			for _, icon := range talent.IconNames {
				if icon != codec.FillerIcon {
					files = append(files, icon)
				}
			}
		}
	}

	b := atlas.Builder{Dir: cfg.IconDir, DefaultIcon: cfg.DefaultIcon, TileSize: cfg.TileSize}
	img, meta, err := b.Build(files)
	if err != nil {
		return fmt.Errorf("packing icons: %w", err)
	}
	if err := atlas.Save(cfg.ImageFile, cfg.MetaFile, img, meta); err != nil {
		return err
	}
	slog.Info("icon atlas written", "image", cfg.ImageFile, "meta", cfg.MetaFile, "tiles", len(meta.Files))
	return nil
}

func createFile(path string, write func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
