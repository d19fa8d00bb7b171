package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aaronzipp/wargame-turns/internal/config"
	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/session"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Run a hot-seat session in this terminal",
	Long: `Run a local session where every participant shares this terminal.
The prompt shows who is expected to act; commands are issued on their behalf.`,
	Args: cobra.NoArgs,
	RunE: runLocal,
}

func init() {
	localCmd.Flags().String("roster", "", "roster file (YAML or JSON)")
	localCmd.Flags().Int("turn-seconds", 0, "combat turn budget in seconds (overrides the roster)")
	_ = localCmd.MarkFlagRequired("roster")
	rootCmd.AddCommand(localCmd)
}

func runLocal(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	path, _ := cmd.Flags().GetString("roster")
	roster, err := config.LoadRoster(path)
	if err != nil {
		return err
	}
	if roster.Mode == models.ModeNetworked {
		return fmt.Errorf("roster %s is for a networked session; use join", path)
	}

	sc := roster.SessionConfig()
	if sc.Code == "" {
		sc.Code = game.GenerateSessionCode()
	}
	if n, _ := cmd.Flags().GetInt("turn-seconds"); n != 0 {
		sc.TurnSeconds = n
	} else if sc.TurnSeconds == 0 {
		sc.TurnSeconds = cfg.TurnSeconds
	}

	board := game.NewElementBoard()
	s, err := session.New(sc, session.Options{Elements: board, Logger: logger})
	if err != nil {
		return err
	}
	defer s.Dispose()

	c := newConsole(s, board, cmd.OutOrStdout(), s.Actor)
	defer c.watch()()
	return c.run(cmd.Context(), os.Stdin, nil)
}
