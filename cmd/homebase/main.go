package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dastanaron/homebase/internal/commands"
	"github.com/dastanaron/homebase/internal/config"
	"github.com/dastanaron/homebase/internal/drag"
	"github.com/dastanaron/homebase/internal/logging"
	"github.com/dastanaron/homebase/internal/repository"
	"github.com/dastanaron/homebase/internal/retry"
	"github.com/dastanaron/homebase/internal/service"
	"github.com/dastanaron/homebase/internal/ui"
)

var (
	configPath string
	dbPath     string
	logLevel   string
)

// env is everything a command needs, built once per run
type env struct {
	repo *repository.KVRepository
	svc  *service.TileService
}

func setup(tui bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.WithDBPath(dbPath)
	}
	if logLevel != "" {
		cfg.WithLogLevel(logLevel)
	}

	// The TUI owns the terminal: without a log file it stays silent.
	out := cfg.LogPath
	if out == "" && !tui {
		out = "stderr"
	}
	if out != "" {
		if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: out}); err != nil {
			return nil, fmt.Errorf("init logging: %w", err)
		}
	}

	repo, err := repository.NewSQLiteRepository(cfg.DBPath, logging.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rc := retry.DefaultConfig()
	rc.MaxAttempts = cfg.PersistAttempts
	svc := service.NewTileService(repo, service.Options{
		Drag: drag.Options{
			Delays:         drag.Delays{Link: cfg.LinkSettleDelay, Folder: cfg.FolderSettleDelay},
			RevertOnCancel: cfg.RevertOnCancel,
		},
		Retry:  rc,
		Logger: logging.Named("tiles"),
	})

	logging.L().Debug("configured",
		zap.String("db", cfg.DBPath),
		zap.Duration("link_delay", cfg.LinkSettleDelay),
		zap.Duration("folder_delay", cfg.FolderSettleDelay),
	)
	return &env{repo: repo, svc: svc}, nil
}

func (e *env) close() {
	if err := e.repo.Close(); err != nil {
		logging.L().Warn("closing store", zap.Error(err))
	}
	_ = logging.Sync()
}

// withService runs fn against a loaded service for the CLI subcommands
func withService(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if err := e.svc.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, e)
}

var rootCmd = &cobra.Command{
	Use:   "homebase",
	Short: "A terminal start page of link tiles and folders",
	Long: `homebase keeps a grid of link tiles. Drag a tile onto another to group
them into a folder, drag along the edges to reorder, and drag links out of
an open folder to put them back on the grid.

Run without a subcommand to open the grid.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(true)
		if err != nil {
			return err
		}
		defer e.close()

		app := ui.NewApp(e.svc, logging.Named("ui"))
		return app.Run(cmd.Context())
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tiles from a JSON backup or a browser bookmarks HTML file",
	Long: `Import tiles from a file.

A .json backup replaces the current tiles and notes. Any other file is read
as a Netscape bookmarks export and its links are added after the existing
tiles.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, e *env) error {
			return commands.NewImportCommand(e.svc, logging.Named("import"), cmd.OutOrStdout()).Execute(ctx, args[0])
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export tiles as a JSON backup (.json) or bookmarks HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, e *env) error {
			return commands.NewExportCommand(e.svc, cmd.OutOrStdout()).Execute(ctx, args[0])
		})
	},
}

var clearDoublesCmd = &cobra.Command{
	Use:   "clear-doubles",
	Short: "Remove links whose URL already appears earlier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, e *env) error {
			return commands.NewClearDoublesCommand(e.svc, cmd.OutOrStdout()).Execute(ctx)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print tiles in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, e *env) error {
			return commands.NewListCommand(e.svc, cmd.OutOrStdout()).Execute()
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.homebase/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default: ~/.homebase/homebase.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearDoublesCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
