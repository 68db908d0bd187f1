package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"astria/internal/astria"
	"astria/internal/infra"
)

// Handler receives the tune record the service posts to the callback URL
// when training finishes.
type Handler func(ctx context.Context, tune *astria.Tune)

// NewRouter builds the HTTP surface for training callbacks.
func NewRouter(logger *infra.Logger, handle Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/callbacks/tunes", func(w http.ResponseWriter, req *http.Request) {
		var tune astria.Tune
		if err := json.NewDecoder(req.Body).Decode(&tune); err != nil {
			logger.Warn().Err(err).Msg("callback: invalid tune payload")
			http.Error(w, "invalid tune payload", http.StatusBadRequest)
			return
		}
		logger.Info().
			Int64("tune_id", tune.ID).
			Str("title", tune.Title).
			Bool("trained", tune.Trained()).
			Msg("callback: tune notification received")
		if handle != nil {
			handle(req.Context(), &tune)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// Server wraps http.Server to provide graceful startup and shutdown helpers
// for the callback listener.
type Server struct {
	server *http.Server
}

// NewServer creates a configured callback listener.
func NewServer(cfg *infra.Config, logger *infra.Logger, handle Handler) *Server {
	srv := &http.Server{
		Addr:              ":" + cfg.CallbackPort,
		Handler:           NewRouter(logger, handle),
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
	return &Server{server: srv}
}

// Start runs the listener in the current goroutine.
func (s *Server) Start() error {
	if s.server == nil {
		return nil
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
