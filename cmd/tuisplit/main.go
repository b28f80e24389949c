// Package main is the entry point for tuisplit.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dshills/tuisplit/internal/app"
	"github.com/dshills/tuisplit/internal/config"
	"github.com/dshills/tuisplit/internal/logging"
	"github.com/dshills/tuisplit/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "tuisplit",
		Short: "Split the terminal between two live commands",
		Long: `tuisplit divides the terminal into two panes, each running its own
command on a pseudo-terminal. One-shot commands rerun on an interval;
Ctrl+N turns the focused pane into an interactive shell.

Keys: q quit, v/h layout, Tab focus, Up/Down/PgUp/PgDn scroll,
1-4 diagnostics, Ctrl+N shell, F5 refresh.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.BindFlags(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), cfg)
		},
	}
	config.SetDefaults(v)
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newConfigCmd(v), newVersionCmd())
	return root
}

func newConfigCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tuisplit %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
			fmt.Fprintf(out, "Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

func runSession(parent context.Context, cfg config.Config) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tuisplit needs an interactive terminal")
	}

	closeLog, err := logging.Init(logging.Config{
		Level:      cfg.Log.Level,
		Format:     logging.Format(cfg.Log.Format),
		Sink:       logging.Sink(cfg.Log.Sink),
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}, logging.InitOptions{Version: version})
	if err != nil {
		return err
	}
	defer closeLog()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	screen, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}

	session := app.New(app.Options{
		Backend:         screen,
		FirstCommand:    cfg.FirstCommand,
		SecondCommand:   cfg.SecondCommand,
		Shell:           cfg.Shell,
		Layout:          cfg.LayoutMode(),
		RefreshInterval: cfg.RefreshInterval,
		TickInterval:    cfg.TickInterval,
		Scrollback:      cfg.Scrollback,
		Logger:          slog.Default(),
	})
	defer session.Shutdown()

	if err := session.Run(ctx); err != nil && !errors.Is(err, app.ErrQuit) {
		slog.Error("session failed", "error", err)
		return err
	}
	return nil
}
