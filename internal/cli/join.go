package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/session"
	"github.com/aaronzipp/wargame-turns/internal/transport/ws"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a hosted session as one participant",
	Long: `Mirror a networked session hosted by an authority server. Commands are
proposed to the authority and take effect once it confirms them.`,
	Args: cobra.NoArgs,
	RunE: runJoin,
}

func init() {
	joinCmd.Flags().String("server", "http://localhost:8080", "authority base URL")
	joinCmd.Flags().String("code", "", "session code")
	joinCmd.Flags().String("participant", "", "your participant id")
	_ = joinCmd.MarkFlagRequired("code")
	_ = joinCmd.MarkFlagRequired("participant")
	rootCmd.AddCommand(joinCmd)
}

func runJoin(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	server, _ := cmd.Flags().GetString("server")
	code, _ := cmd.Flags().GetString("code")
	participantID, _ := cmd.Flags().GetString("participant")
	code = strings.ToUpper(strings.TrimSpace(code))

	ctx := cmd.Context()
	snap, err := fetchSnapshot(ctx, server, code)
	if err != nil {
		return err
	}

	wsURL, err := websocketURL(server, code, participantID)
	if err != nil {
		return err
	}
	client := ws.NewClient(wsURL, models.ModeNetworked, logger)

	board := game.NewElementBoard()
	s, err := session.Restore(snap, session.Options{
		Elements:      board,
		Transport:     client,
		Logger:        logger.With(zap.String("participant", participantID)),
		RemoteTimeout: cfg.RemoteTimeout,
	})
	if err != nil {
		return err
	}
	defer s.Dispose()

	client.Handle(s.Deliver)
	if err := s.Init(ctx); err != nil {
		return err
	}

	var me *models.Participant
	for _, p := range s.State().Participants {
		if p.ID == participantID {
			me = &p
			break
		}
	}
	if me == nil {
		return fmt.Errorf("%s is not a participant of %s", participantID, code)
	}

	c := newConsole(s, board, cmd.OutOrStdout(), func() *models.Participant { return me })
	defer c.watch()()
	return c.run(ctx, os.Stdin, client.Done())
}

func fetchSnapshot(ctx context.Context, server, code string) (models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(server, "/")+"/sessions/"+url.PathEscape(code)+"/snapshot", nil)
	if err != nil {
		return models.Snapshot{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("fetch session %s: %w", code, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Snapshot{}, fmt.Errorf("fetch session %s: %s", code, resp.Status)
	}

	var snap models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode session %s: %w", code, err)
	}
	return snap, nil
}

// websocketURL turns the authority base URL into the join address.
func websocketURL(server, code, participantID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path += "/ws/" + code
	u.RawQuery = url.Values{"participant": {participantID}}.Encode()
	return u.String(), nil
}
