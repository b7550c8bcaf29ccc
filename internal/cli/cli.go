// Package cli implements the ttmctl command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/udisondev/ttmgo/internal/backend"
	"github.com/udisondev/ttmgo/internal/config"
	"github.com/udisondev/ttmgo/internal/content"
)

// DefaultConfigPath is read when neither --config nor $TTM_CONFIG is set.
const DefaultConfigPath = "config/ttm.yaml"

type app struct {
	configPath string
	verbose    bool
	cfg        config.TTM
	logOut     io.Writer
}

// NewRootCommand builds the command tree. Logs go to logOut.
func NewRootCommand(logOut io.Writer) *cobra.Command {
	a := &app{logOut: logOut}

	root := &cobra.Command{
		Use:           "ttmctl",
		Short:         "Inspect and manage talent tree content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.Path(DefaultConfigPath), "config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.newResolveCmd(),
		a.newImportCmd(),
		a.newCopyCmd(),
		a.newDeleteCmd(),
		a.newWorkspaceCmd(),
		a.newDecodeCmd(),
		a.newMigrateCmd(),
	)
	return root
}

// Execute runs ttmctl with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stderr).ExecuteContext(ctx)
}

func (a *app) init() error {
	cfg, err := config.LoadTTM(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := charmlog.Level(cfg.SlogLevel())
	if a.verbose {
		level = charmlog.DebugLevel
	}
	logger := charmlog.NewWithOptions(a.logOut, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	slog.SetDefault(slog.New(logger))
	return nil
}

// withService opens the configured store for the duration of fn.
func (a *app) withService(ctx context.Context, fn func(*content.Service) error) error {
	b, err := backend.Open(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(content.NewService(b.Store, a.cfg.Resolver.MaxDepth))
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
