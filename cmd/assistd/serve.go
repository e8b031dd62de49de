package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"assistd/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetString("addr"); v != "" {
				cfg.Addr = v
			}
			if v, _ := cmd.Flags().GetString("cache-dir"); v != "" {
				cfg.CacheDir = v
			}
			if v, _ := cmd.Flags().GetString("models-dir"); v != "" {
				cfg.ModelsDir = v
			}
			if v, _ := cmd.Flags().GetString("driver-mode"); v != "" {
				cfg.DriverMode = v
			}
			if v, _ := cmd.Flags().GetString("remote-host"); v != "" {
				cfg.RemoteHost = v
			}
			if v, _ := cmd.Flags().GetBool("preload"); v {
				cfg.Preload = true
			}

			log := newLogger()
			httpapi.SetLogger(log)
			orch := buildOrchestrator(cfg, log)
			defer orch.Close()

			if cfg.Preload {
				go func() {
					if err := orch.Preload(context.Background()); err != nil {
						log.Warn().Err(err).Msg("preload incomplete, drivers will load lazily")
					}
				}()
			}

			srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(orch)}
			go func() {
				log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Msg("assistd listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server error")
				}
			}()

			// Graceful shutdown (Ctrl+C / SIGTERM)
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address, e.g. :8080")
	cmd.Flags().String("cache-dir", "", "Response cache directory")
	cmd.Flags().String("models-dir", "", "Directory holding model snapshots")
	cmd.Flags().String("driver-mode", "", "Force driver backend: native|pipeline|hybrid|remote")
	cmd.Flags().String("remote-host", "", "Remote inference server base URL")
	cmd.Flags().Bool("preload", false, "Load the primary model at startup")
	return cmd
}
