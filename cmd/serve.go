package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/empathy/internal/game"
	"github.com/lehigh-university-libraries/empathy/internal/handlers"
)

// serveWeb runs the game with the browser window until the pictures run
// out, ctx is cancelled, or the server fails.
func serveWeb(ctx context.Context, addr string, c *clients, guessTimeout time.Duration, out io.Writer) error {
	controller := game.NewController(c.lister, c.fetcher, c.oracle, nil)
	controller.GuessTimeout = guessTimeout

	handler := handlers.New(controller.Rounds)
	controller.UI = handler

	server := &http.Server{
		Addr:    addr,
		Handler: handlers.NewRouter(handler),
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Empathy interface available", "addr", addr, "url", "http://localhost"+addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	gameCtx, cancelGame := context.WithCancel(ctx)
	defer cancelGame()
	gameErr := make(chan error, 1)
	go func() {
		gameErr <- runGame(gameCtx, controller, out)
	}()

	var err error
	select {
	case err = <-gameErr:
	case err = <-serverErr:
		cancelGame()
		<-gameErr
	}

	slog.Info("Shutting down server...")
	// Give server 5 seconds to shut down gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("Server shutdown failed", "err", shutdownErr)
		return errors.Join(err, shutdownErr)
	}
	slog.Info("Server stopped")
	return err
}
