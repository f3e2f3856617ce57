package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP occurrence service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listener, err := net.Listen("tcp", a.cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", a.cfg.Server.Addr, err)
			}
			return a.serve(ctx, listener)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr from config)")
	return cmd
}

// serve runs the occurrence service on listener until ctx is done, then shuts
// it down gracefully
func (a *app) serve(ctx context.Context, listener net.Listener) error {
	engine := recurrence.NewEngineWithConfig(a.cfg.RecurrenceConfig(a.logger))
	handler, err := server.New(engine,
		server.WithLogger(a.logger),
		server.WithPath(a.cfg.Server.Path))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Server.Path, handler)

	httpServer := &http.Server{
		Handler:      mux,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(a.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("occurrence service listening",
			"addr", listener.Addr().String(),
			"path", a.cfg.Server.Path,
			"max_iterations", a.cfg.Engine.MaxIterations)
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
