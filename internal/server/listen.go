package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"github.com/xtding233/galton-board/internal/profile"
)

// ServeConfig wires a Server to its listeners.
type ServeConfig struct {
	Addr     string // HTTP listen address
	GRPCAddr string // gRPC listen address; empty disables gRPC
	Loader   *profile.Loader
	Profiles []string      // profile files to watch besides the default
	Watch    time.Duration // poll interval for config changes; 0 disables
	Options  Options
}

// ListenAndServe runs the HTTP (and optionally gRPC) API until ctx is done,
// then shuts both down.
func ListenAndServe(ctx context.Context, cfg ServeConfig) error {
	srv := New(cfg.Loader, cfg.Options)

	if cfg.Watch > 0 {
		if paths := cfg.Loader.Paths(cfg.Profiles...); len(paths) > 0 {
			w := profile.NewFileWatcher(paths, cfg.Watch, func(path string) {
				log.Printf("[Server] Config changed: %s, reloading", path)
				cfg.Loader.Invalidate()
			})
			w.Start()
			defer w.Stop()
		}
	}

	errCh := make(chan error, 2)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[Server] HTTP listening on %s ...", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var gs *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			_ = httpSrv.Close()
			return fmt.Errorf("grpc listen: %w", err)
		}
		gs = grpc.NewServer()
		RegisterSimulator(gs, srv)
		go func() {
			log.Printf("[Server] gRPC listening on %s ...", cfg.GRPCAddr)
			if err := gs.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Printf("[Server] Shutting down...")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if gs != nil {
		gs.GracefulStop()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
