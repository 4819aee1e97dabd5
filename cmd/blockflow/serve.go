package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/blockflow"
	"github.com/aretw0/blockflow/internal/cli"
	httpAdapter "github.com/aretw0/blockflow/pkg/adapters/http"
	"github.com/aretw0/blockflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the workflow editor API: stateless /validate and /lint endpoints, editor
sessions under /sessions, Prometheus metrics on /metrics and the OpenAPI document on /openapi.yaml.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		exitOnError("Error loading config", err)
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		exitOnError("Error registering metrics", err)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		engine, closeFn, err := cli.CreateEngine(ctx, cfg, logger, blockflow.WithLifecycleHooks(metrics.Hooks()))
		exitOnError("Error initializing blockflow", err)
		defer closeFn()

		handler, err := httpAdapter.NewHandler(engine,
			httpAdapter.WithMetrics(metrics, reg),
			httpAdapter.WithLogger(logger),
		)
		exitOnError("Error building handler", err)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting blockflow server", "addr", srv.Addr, "store", cfg.Store.Kind)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
				closeFn()
				os.Exit(1)
			}

		case <-ctx.Done():
			logger.Info("shutting down", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("blockflow server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides the config file)")
}
