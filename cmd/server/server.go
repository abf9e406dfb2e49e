package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

// newHTTPServer builds the http.Server from the server configuration.
func (app *application) newHTTPServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
	}
}

// startHTTPServer serves router until SIGINT or SIGTERM, then drains in-flight
// requests and releases application resources within the shutdown timeout.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) (int, error) {
	server := app.newHTTPServer(router)

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	wait := gfshutdown.GracefulShutdown(
		ctx,
		app.config.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				app.logger.Info("Shutting down server...")
				shutdownErr := server.Shutdown(ctx)
				// Connections are released only after in-flight requests have drained.
				return errors.Join(shutdownErr, app.cleanup())
			},
		},
	)

	select {
	case err, ok := <-serveErr:
		if ok && err != nil {
			app.logger.Error("Server failed", slog.String("error", err.Error()))
			_ = app.cleanup()
			return 1, fmt.Errorf("server failed: %w", err)
		}
	case exitCode := <-wait:
		app.logger.Info("Server shutdown completed", slog.Int("exit_code", exitCode))
		return exitCode, nil
	}

	exitCode := <-wait
	app.logger.Info("Server shutdown completed", slog.Int("exit_code", exitCode))
	return exitCode, nil
}
