package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/growthlens/internal/adapters/http/api"
	"github.com/okian/growthlens/internal/adapters/repository"
	service "github.com/okian/growthlens/internal/app"
	"github.com/okian/growthlens/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [path]",
		Short: "Serve the analysis report over HTTP",
		Long: `Serve analyzes the snapshot file once and exposes the report at /report and
/report/{group}, liveness at /healthz and Prometheus metrics at /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.cfg.SnapshotPath
			if len(args) == 1 {
				path = args[0]
			}
			if addr == "" {
				addr = o.cfg.Addr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			return runServe(cmd.Context(), ln, path)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: addr)")
	return cmd
}

// runServe analyzes path and serves the report on ln until ctx is done.
func runServe(ctx context.Context, ln net.Listener, path string) error {
	log := logger.Named("serve")

	svc := service.New(
		service.WithStore(repository.NewFileStore(path, repository.WithLogger(log))),
		service.WithLogger(log),
	)
	rep, err := svc.LoadAndAnalyze(ctx)
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           api.NewServer(api.StaticReport(rep), api.WithLogger(log)).Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
