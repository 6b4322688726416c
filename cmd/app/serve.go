package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Addr
			}
			srv := server.New(server.Deps{
				Repo:     db,
				Board:    a.board(db),
				Timers:   a.engine(db),
				Location: a.loc,
				Logger:   a.logger,
			})
			httpServer := &http.Server{
				Addr:    addr,
				Handler: srv.Engine(),
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.String("db", db.Path()))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					a.logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
					return err
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides "+config.EnvPrefix+"ADDR)")
	return cmd
}
