// Package cli is the command line entry point.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/config"
	"github.com/aaronzipp/wargame-turns/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "wargame-turns",
	Short: "Turn and phase orchestration for tabletop wargame sessions",
	Long: `wargame-turns runs the turn and phase engine of a wargame session.

It can host networked sessions as the authority server, run a hot-seat
local session in the terminal, or join a hosted session as a participant.`,
	SilenceUsage: true,
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file to load before reading WARGAME_* variables")
}

// setup loads configuration and builds the logger shared by every command.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	var paths []string
	if p, _ := cmd.Flags().GetString("env-file"); p != "" {
		paths = append(paths, p)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
