package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"astria/internal/astria"
	"astria/internal/callback"
)

// listenCmd runs a small HTTP receiver for tune-training callbacks, suitable
// as the target of tunes create --callback.
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Receive tune-training callbacks",
	RunE:  runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func runListen(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	server := callback.NewServer(a.cfg, &a.logger, func(_ context.Context, tune *astria.Tune) {
		a.logger.Info().
			Int64("tune_id", tune.ID).
			Str("title", tune.Title).
			Bool("trained", tune.Trained()).
			Msg("tune training finished")
	})

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Msgf("callback listener on :%s", a.cfg.CallbackPort)
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("failed to shutdown callback listener")
		return err
	}
	a.logger.Info().Msg("callback listener stopped")
	return nil
}
