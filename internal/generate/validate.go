package generate

import (
	"context"
	"fmt"

	"astria/internal/astria"
)

// ValidateTune fetches a tune and asserts it can be used as a prompt
// adapter: it must exist, training must have finished, and it must carry the
// lora model type. Transport failures propagate already classified and are
// never re-wrapped.
func (e *Engine) ValidateTune(ctx context.Context, id int64) (*astria.Tune, error) {
	if id <= 0 {
		return nil, astria.NewError(astria.KindValidation, fmt.Sprintf("tune id must be a positive integer, got %d", id))
	}
	tune, err := e.api.RetrieveTune(ctx, id)
	if err != nil {
		return nil, astria.Classify(err)
	}
	if tune == nil || tune.ID == 0 {
		return nil, astria.NewError(astria.KindNotFound, fmt.Sprintf("tune %d not found", id))
	}
	if !tune.Trained() {
		return nil, astria.NewError(astria.KindValidation, fmt.Sprintf("tune %d has not finished training yet", id))
	}
	if !tune.IsLora() {
		modelType := "none"
		if tune.ModelType != nil {
			modelType = *tune.ModelType
		}
		return nil, astria.NewError(astria.KindValidation, fmt.Sprintf("tune %d is not a lora adapter (model_type: %s)", id, modelType))
	}
	return tune, nil
}
