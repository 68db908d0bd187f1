package generate

import (
	"context"
	"testing"

	"astria/internal/astria"
)

func TestValidateTuneRejectsNonPositiveID(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(api, 5)

	for _, id := range []int64{0, -3} {
		_, err := engine.ValidateTune(context.Background(), id)
		if err == nil {
			t.Fatalf("id %d: expected error", id)
		}
		if classified := astria.Classify(err); classified.Kind != astria.KindValidation {
			t.Fatalf("id %d: Kind = %s, want VALIDATION", id, classified.Kind)
		}
	}
	if len(api.tuneCalls) != 0 {
		t.Fatalf("tuneCalls = %v, want none", api.tuneCalls)
	}
}

func TestValidateTuneNotFound(t *testing.T) {
	api := &fakeAPI{}
	engine := newTestEngine(api, 5)

	_, err := engine.ValidateTune(context.Background(), 999)
	if classified := astria.Classify(err); classified.Kind != astria.KindNotFound {
		t.Fatalf("Kind = %s, want NOT_FOUND", classified.Kind)
	}
}

func TestValidateTuneNotTrainedIsValidation(t *testing.T) {
	tune := loraTune(9, "")
	tune.TrainedAt = nil
	api := &fakeAPI{tunes: map[int64]*astria.Tune{9: tune}}
	engine := newTestEngine(api, 5)

	_, err := engine.ValidateTune(context.Background(), 9)
	if classified := astria.Classify(err); classified.Kind != astria.KindValidation {
		t.Fatalf("Kind = %s, want VALIDATION (never NOT_FOUND)", classified.Kind)
	}
}

func TestValidateTuneWrongModelTypeIsValidation(t *testing.T) {
	tune := loraTune(9, "")
	tune.ModelType = strPtr("faceid")
	api := &fakeAPI{tunes: map[int64]*astria.Tune{9: tune}}
	engine := newTestEngine(api, 5)

	_, err := engine.ValidateTune(context.Background(), 9)
	if classified := astria.Classify(err); classified.Kind != astria.KindValidation {
		t.Fatalf("Kind = %s, want VALIDATION", classified.Kind)
	}

	tune.ModelType = nil
	if _, err := engine.ValidateTune(context.Background(), 9); astria.Classify(err).Kind != astria.KindValidation {
		t.Fatalf("nil model_type should also be VALIDATION")
	}
}

func TestValidateTunePropagatesClassifiedErrorUnchanged(t *testing.T) {
	original := astria.NewError(astria.KindRateLimit, "rate limited")
	api := &fakeAPI{tuneErrs: map[int64]error{9: original}}
	engine := newTestEngine(api, 5)

	_, err := engine.ValidateTune(context.Background(), 9)
	classified := astria.Classify(err)
	if classified != original {
		t.Fatalf("classified error was re-wrapped: %v vs %v", classified, original)
	}
}

func TestValidateTuneReturnsRecord(t *testing.T) {
	api := &fakeAPI{tunes: map[int64]*astria.Tune{9: loraTune(9, "ohwx")}}
	engine := newTestEngine(api, 5)

	tune, err := engine.ValidateTune(context.Background(), 9)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if tune.ID != 9 || tune.TriggerToken() != "ohwx" {
		t.Fatalf("tune = %+v", tune)
	}
}
