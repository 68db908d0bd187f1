package generate

import (
	"context"
	"fmt"
	"strings"

	"astria/internal/astria"
)

// GenerateRequest is the caller-facing description of one generation:
// a base prompt, the model to run it on, and optional lora references plus
// rendering parameters.
type GenerateRequest struct {
	Prompt          string
	NegativePrompt  string
	Model           string
	Loras           []LoraReference
	NumImages       int
	Width           int
	Height          int
	CFGScale        float64
	Seed            *int64
	SuperResolution bool
	InpaintFaces    bool
}

// GenerateResult carries the terminal job alongside the adapter records used
// to compose its prompt.
type GenerateResult struct {
	Job   *astria.Prompt
	Refs  []LoraReference
	Tunes []astria.Tune
}

// Generate composes the prompt and drives the job to a terminal state in one
// call. It is what the CLI and other callers use.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, astria.NewError(astria.KindValidation, "prompt text is required")
	}
	model, ok := ModelByName(strings.TrimSpace(req.Model))
	if !ok {
		return nil, astria.NewError(astria.KindValidation,
			fmt.Sprintf("unknown model %q; known models: %s", req.Model, strings.Join(ModelNames(), ", ")))
	}

	composition, err := e.Compose(ctx, req.Prompt, req.Loras, model)
	if err != nil {
		return nil, astria.Classify(err)
	}

	job, err := e.Run(ctx, model, astria.PromptParams{
		Text:            composition.Prompt,
		NegativePrompt:  req.NegativePrompt,
		Width:           req.Width,
		Height:          req.Height,
		NumImages:       req.NumImages,
		CFGScale:        req.CFGScale,
		Seed:            req.Seed,
		SuperResolution: req.SuperResolution,
		InpaintFaces:    req.InpaintFaces,
	})
	if err != nil {
		return nil, astria.Classify(err)
	}

	return &GenerateResult{Job: job, Refs: composition.Refs, Tunes: composition.Tunes}, nil
}
