// Command recur expands recurrence rules into calendar dates, either locally
// or through a remote occurrence service, and can serve that service itself.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cyp0633/librecur/internal/config"
	"github.com/spf13/cobra"
)

// app holds state shared by every subcommand once PersistentPreRunE has run
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "recur",
		Short:         "Expand recurrence rules into calendar dates",
		Long:          "Expand daily, weekly, monthly and yearly recurrence rules into the dates they fall on within a window",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (default ./recur.yaml or ~/.config/recur/recur.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(expandCmd(a), rruleCmd(a), serveCmd(a))
	return rootCmd
}

func (a *app) init(logOutput io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := config.NewLogger(cfg.Log, logOutput)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
