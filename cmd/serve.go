package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/handlers"
	"github.com/lehigh-university-libraries/cropscan/internal/observability"
	"github.com/lehigh-university-libraries/cropscan/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local diagnosis API",
		Long: `Starts a local JSON API for browser front ends. Each browser gets its
own diagnosis session, identified by a cookie, that expires after
--session-ttl of inactivity.`,
		Example: `  # Start server on default port 8888
  cropscan serve

  # Start server on custom port, backed by a local vision model
  cropscan serve --port 3000 --backend ollama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.settings

			opts, err := app.OptionsFromSettings(s)
			if err != nil {
				return err
			}
			m, err := observability.NewMetrics(nil)
			if err != nil {
				return err
			}
			opts.Metrics = m

			key := []byte(s.Serve.SessionKey)
			if len(key) == 0 {
				// sessions do not survive a restart without a configured key
				key = securecookie.GenerateRandomKey(32)
			}
			cookies := handlers.NewCookieStore(key, s.Serve.SessionTTL)

			store := storage.New(s.Serve.SessionTTL)
			defer store.Close()

			handler := handlers.New(store, cookies, func() *app.Client {
				// clients outlive the request that creates them
				return app.New(context.Background(), opts)
			})

			// Set up routes
			mux := http.NewServeMux()
			handler.Register(mux)
			m.RegisterMetricsHandlers(mux)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + s.Serve.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Cropscan API available", "addr", addr, "url", "http://localhost"+addr, "backend", s.Backend)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped", "clients", store.Count())
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringP("port", "p", "8888", "Port to listen on")
	cmd.Flags().Duration("session-ttl", 30*time.Minute, "Idle time before a browser session is discarded")
	cmd.Flags().Bool("geo", true, "Attach location context reported by the browser")

	return cmd
}
