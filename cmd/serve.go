// =============================================================================
// PAXML Exporter - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   paxml serve [--port 8080]
//
// ENDPOINTS:
//   GET|POST /api/paxml/export    - PAXML document, or 422 with the blocking issues
//   GET|POST /api/paxml/validate  - validation summary as JSON
//   GET      /healthz             - liveness
//
// The server stops on SIGINT/SIGTERM and waits up to
// server.shutdown_timeout_seconds for in-flight exports.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ginjaninja78/paxml-exporter/internal/httpapi"
	"github.com/ginjaninja78/paxml-exporter/internal/telemetry"
)

const serviceName = "paxml-exporter"

// port overrides server.port when set.
var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the export HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides server.port)")
}

func runServe() error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if port != 0 {
		a.cfg.Server.Port = port
	}

	exporter, err := a.newExporter()
	if err != nil {
		return err
	}

	shutdownTracing := telemetry.Setup(serviceName, a.logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			a.logger.WithError(err).Warn("Tracing shutdown failed")
		}
	}()

	if a.cfg.Auth.JWTSecret == "" {
		a.logger.Warn("auth.jwt_secret is empty; export endpoints are not protected")
	}

	handler := httpapi.NewHandler(exporter, a.store, a.cfg.Auth, a.logger)
	server := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           otelhttp.NewHandler(handler.Routes(), serviceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.WithField("addr", server.Addr).Info("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serverErr:
		return err
	case sig := <-stop:
		a.logger.WithField("signal", sig.String()).Info("Shutting down")
	}

	timeout := time.Duration(a.cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}
