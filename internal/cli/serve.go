package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aaronzipp/wargame-turns/internal/handlers"
	"github.com/aaronzipp/wargame-turns/internal/store"
	"github.com/aaronzipp/wargame-turns/internal/telemetry"
	"github.com/aaronzipp/wargame-turns/internal/transport/ws"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the authority server for networked sessions",
	Long: `Host networked sessions over HTTP. Participants connect over websocket,
viewers follow along over server-sent events, and every change is
snapshotted to SQLite so sessions survive a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides WARGAME_ADDR)")
	serveCmd.Flags().String("db", "", "snapshot database path (overrides WARGAME_DB_PATH)")
	serveCmd.Flags().Bool("restore", true, "host every stored snapshot on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}

	ctx := cmd.Context()
	shutdownTracing, err := telemetry.Setup(ctx, "wargame-turns", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	snapshots, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = snapshots.Close() }()

	sessions := store.NewSessionStore()
	defer sessions.CloseAll()

	h := &handlers.Context{
		Sessions:    sessions,
		Snapshots:   snapshots,
		Hub:         ws.NewHub(logger),
		Logger:      logger,
		PublicURL:   cfg.PublicURL,
		TurnSeconds: cfg.TurnSeconds,
	}
	if restore, _ := cmd.Flags().GetBool("restore"); restore {
		n, err := h.RestoreAll(ctx)
		if err != nil {
			return fmt.Errorf("restore sessions: %w", err)
		}
		logger.Info("restored sessions", zap.Int("count", n))
	}

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		// Event streams end with the server instead of holding Shutdown open.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		logger.Info("authority listening", zap.String("addr", cfg.Addr), zap.String("public_url", cfg.PublicURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}
