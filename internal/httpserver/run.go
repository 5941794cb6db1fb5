package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Run maps routes and serves until the context is cancelled, then shuts
// down gracefully with a bounded drain window.
func (srv *HTTPServer) Run(ctx context.Context) error {
	if err := srv.mapHandlers(); err != nil {
		return fmt.Errorf("failed to map handlers: %w", err)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.port),
		Handler: srv.gin,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.l.Infof(ctx, "HTTP server listening on :%d", srv.port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	srv.l.Infof(context.Background(), "Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
