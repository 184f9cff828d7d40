package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/config"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/logger"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

// Global state set up before every subcommand runs.
var (
	configPath string
	verbose    bool

	settings *config.Settings
	log      *zap.Logger
)

// errCancelled marks a run stopped by an interrupt.
var errCancelled = errors.New("cancelled")

var rootCmd = &cobra.Command{
	Use:   "proxyprint",
	Short: "Lay out card print orders as printable pages",
	Long: `proxyprint reads card print orders (XML documents listing card images and the
slots they fill), fetches the images and lays them out 3x3 on A4 pages with
cut marks, writing one PDF or PNG per sheet: front page then back page.

Settings are read from ` + config.DefaultPath() + ` (TOML, or JSON for
other extensions) and can be overridden with PROXYPRINT_* environment
variables and command flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if verbose {
			settings.LogLevel = "debug"
		}

		log, err = logger.New(settings.ToLoggerConfig())
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			color.NoColor = true
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show verbose output and debug logs")

	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(configCmd)
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// rule returns a horizontal separator as wide as the terminal.
func rule() string {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 48
	}
	return strings.Repeat("━", min(width, 60))
}

func exitCode(err error) int {
	if errors.Is(err, errCancelled) || errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
