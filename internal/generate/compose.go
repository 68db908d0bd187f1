package generate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"astria/internal/astria"
)

// Weight bounds for lora references. References with a zero weight get the
// default.
const (
	MinLoraWeight     = 0.1
	MaxLoraWeight     = 1.0
	DefaultLoraWeight = 1.0
)

// LoraReference pairs a tune id with a blending weight, as supplied by a
// caller for one composition.
type LoraReference struct {
	TuneID int64
	Weight float64
}

// Composition is the outcome of composing a prompt: the final text to send
// and the tune records validated along the way. The records are kept so that
// later formatting (the adapter usage summary) does not fetch them again.
type Composition struct {
	Prompt string
	Refs   []LoraReference
	Tunes  []astria.Tune
}

// Compose validates each lora reference in caller order and builds the final
// prompt text: an ordered <lora:id:weight> tag prefix, trigger tokens
// prepended once, then the base prompt. Validation is sequential and
// fail-fast; the first failing reference aborts the whole composition.
// Weight and family checks happen before any network call.
func (e *Engine) Compose(ctx context.Context, basePrompt string, refs []LoraReference, model Model) (*Composition, error) {
	if len(refs) == 0 {
		return &Composition{Prompt: basePrompt}, nil
	}
	if !model.SupportsLora() {
		return nil, astria.NewError(astria.KindValidation,
			fmt.Sprintf("lora adapters are locked to the %s model family; model %q cannot use them", astria.BranchFlux, model.Name))
	}

	normalized := make([]LoraReference, len(refs))
	for i, ref := range refs {
		if ref.TuneID <= 0 {
			return nil, astria.NewError(astria.KindValidation,
				fmt.Sprintf("lora reference %d: tune id must be a positive integer", i+1))
		}
		weight := ref.Weight
		if weight == 0 {
			weight = DefaultLoraWeight
		}
		if weight < MinLoraWeight || weight > MaxLoraWeight {
			return nil, astria.NewError(astria.KindValidation,
				fmt.Sprintf("lora reference %d: weight %s must be between %s and %s",
					i+1, formatWeight(weight), formatWeight(MinLoraWeight), formatWeight(MaxLoraWeight)))
		}
		normalized[i] = LoraReference{TuneID: ref.TuneID, Weight: weight}
	}

	var prefix strings.Builder
	text := basePrompt
	tunes := make([]astria.Tune, 0, len(normalized))
	for _, ref := range normalized {
		tune, err := e.ValidateTune(ctx, ref.TuneID)
		if err != nil {
			return nil, astria.Classify(err).
				Annotate(fmt.Sprintf("lora tune %d cannot be used; remove it or choose a trained flux lora", ref.TuneID))
		}
		fmt.Fprintf(&prefix, "<lora:%d:%s>", ref.TuneID, formatWeight(ref.Weight))
		if token := tune.TriggerToken(); token != "" && !strings.Contains(text, token) {
			text = token + " " + text
		}
		tunes = append(tunes, *tune)
	}

	return &Composition{
		Prompt: prefix.String() + " " + text,
		Refs:   normalized,
		Tunes:  tunes,
	}, nil
}

// formatWeight always keeps a decimal point, so tags read <lora:1:1.0>.
func formatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
