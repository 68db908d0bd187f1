package generate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"astria/internal/astria"
	"astria/internal/infra"
)

// apiClient is the slice of the Astria client the engine depends on.
type apiClient interface {
	RetrieveTune(ctx context.Context, id int64) (*astria.Tune, error)
	CreatePrompt(ctx context.Context, tuneID int64, params astria.PromptParams) (*astria.Prompt, error)
	RetrievePrompt(ctx context.Context, tuneID, promptID int64) (*astria.Prompt, error)
}

const (
	defaultPollInterval    = 2 * time.Second
	defaultMaxPollAttempts = 90

	// errorWarmUpAttempts is the number of polling iterations during which an
	// error field on an otherwise-processing job is ignored. The service may
	// publish transient error hints early in processing.
	errorWarmUpAttempts = 2
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	PollInterval    time.Duration
	MaxPollAttempts int
	Logger          *infra.Logger
}

// Engine validates adapter references, composes prompts and drives
// generation jobs to a terminal state. One Engine is safe for concurrent use;
// each call is strictly sequential internally.
type Engine struct {
	api          apiClient
	logger       *infra.Logger
	pollInterval time.Duration
	maxAttempts  int
}

// NewEngine wires an engine to an Astria API client.
func NewEngine(api apiClient, opts Options) *Engine {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	attempts := opts.MaxPollAttempts
	if attempts <= 0 {
		attempts = defaultMaxPollAttempts
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Engine{api: api, logger: logger, pollInterval: interval, maxAttempts: attempts}
}

// PollingTimeout is the diagnostic payload attached to a POLLING_TIMEOUT
// error when the attempt budget runs out.
type PollingTimeout struct {
	JobID       int64 `json:"job_id"`
	MaxAttempts int   `json:"max_attempts"`
}

// Run submits a generation job and blocks until it completes, fails, or the
// polling attempt budget is exhausted. Each poll waits the configured
// interval first; both the waits and the requests honor ctx, so cancelling
// the context tears the loop down. A transport failure during polling is a
// hard stop, never retried and never counted as a processing attempt.
func (e *Engine) Run(ctx context.Context, model Model, params astria.PromptParams) (*astria.Prompt, error) {
	job, err := e.api.CreatePrompt(ctx, model.TuneID, params)
	if err != nil {
		return nil, astria.Classify(err)
	}
	if job.Completed() {
		return job, nil
	}
	if job.Failed() {
		return nil, jobFailure(job)
	}

	e.logger.Debug().
		Int64("job_id", job.ID).
		Str("model", model.Name).
		Msg("generation pending, polling")

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := wait(ctx, e.pollInterval); err != nil {
			return nil, astria.Classify(err)
		}
		current, err := e.api.RetrievePrompt(ctx, model.TuneID, job.ID)
		if err != nil {
			return nil, astria.Classify(err)
		}
		if current.Completed() {
			e.logger.Debug().
				Int64("job_id", job.ID).
				Int("attempts", attempt).
				Int("images", len(current.Images)).
				Msg("generation completed")
			return current, nil
		}
		if current.Failed() && attempt > errorWarmUpAttempts {
			return nil, jobFailure(current)
		}
	}

	return nil, &astria.Error{
		Kind:    astria.KindPollingTimeout,
		Message: fmt.Sprintf("generation %d still processing after %d polling attempts", job.ID, e.maxAttempts),
		Details: PollingTimeout{JobID: job.ID, MaxAttempts: e.maxAttempts},
	}
}

func jobFailure(job *astria.Prompt) *astria.Error {
	return &astria.Error{
		Kind:    astria.KindAPI,
		Message: fmt.Sprintf("generation %d failed: %s", job.ID, job.FailureMessage()),
		Details: job.FailureMessage(),
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
