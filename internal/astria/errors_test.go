package astria

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyStatusKinds(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusInternalServerError, KindAPI},
		{http.StatusBadGateway, KindAPI},
	}
	for _, tc := range cases {
		got := Classify(&httpFailure{Status: tc.status})
		if got.Kind != tc.want {
			t.Fatalf("status %d: Kind = %s, want %s", tc.status, got.Kind, tc.want)
		}
		if got.HTTPStatus != tc.status {
			t.Fatalf("status %d: HTTPStatus = %d", tc.status, got.HTTPStatus)
		}
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	raw := &httpFailure{Status: http.StatusUnprocessableEntity, Body: []byte(`{"error":"bad prompt"}`)}
	first := Classify(raw)
	second := Classify(first)
	if first != second {
		t.Fatalf("re-classifying returned a different error: %v vs %v", first, second)
	}
}

func TestClassifyMessageExtraction(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"plain string", "something broke", "something broke"},
		{"json string", `"quota exceeded"`, "quota exceeded"},
		{"error field", `{"error":"bad prompt"}`, "bad prompt"},
		{"message field", `{"message":"try later"}`, "try later"},
		{"error wins over field map", `{"error":"bad prompt","title":["missing"]}`, "bad prompt"},
		{"rails errors array", `{"errors":["too short","too vague"]}`, "too short, too vague"},
		{"rails errors map", `{"errors":{"text":["must include ohwx"]}}`, "text: must include ohwx"},
		{"field keyed arrays", `{"title":["is missing"],"name":["is invalid","is reserved"]}`, "name: is invalid, is reserved; title: is missing"},
		{"empty body", "", "API error (500)"},
		{"unusable json", `{"count":3}`, "API error (500)"},
	}
	for _, tc := range cases {
		got := Classify(&httpFailure{Status: http.StatusInternalServerError, Body: []byte(tc.body)})
		if got.Message != tc.want {
			t.Fatalf("%s: Message = %q, want %q", tc.name, got.Message, tc.want)
		}
	}
}

func TestClassifyAuthAppendsRemediation(t *testing.T) {
	got := Classify(&httpFailure{Status: http.StatusUnauthorized, Body: []byte(`{"error":"unauthorized"}`)})
	if got.Kind != KindAuth {
		t.Fatalf("Kind = %s, want AUTH", got.Kind)
	}
	if !strings.Contains(got.Message, "Astria API key") {
		t.Fatalf("Message = %q, want API key hint", got.Message)
	}
}

func TestClassifyContextDeadline(t *testing.T) {
	if got := Classify(context.DeadlineExceeded); got.Kind != KindTimeout {
		t.Fatalf("Kind = %s, want TIMEOUT", got.Kind)
	}
}

func TestClassifyContextCancel(t *testing.T) {
	if got := Classify(context.Canceled); got.Kind != KindSDK {
		t.Fatalf("Kind = %s, want SDK_ERROR", got.Kind)
	}
}

func TestClassifyConnectionFailure(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	if got := Classify(opErr); got.Kind != KindNetwork {
		t.Fatalf("Kind = %s, want NETWORK", got.Kind)
	}
}

func TestClassifyLocalError(t *testing.T) {
	got := Classify(errors.New("nil pointer somewhere"))
	if got.Kind != KindSDK {
		t.Fatalf("Kind = %s, want SDK_ERROR", got.Kind)
	}
}

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil); got.Kind != KindUnknown {
		t.Fatalf("Kind = %s, want UNKNOWN", got.Kind)
	}
}

func TestAnnotateKeepsKindAndStatus(t *testing.T) {
	e := Classify(&httpFailure{Status: http.StatusUnprocessableEntity, Body: []byte(`{"error":"not trained"}`)})
	annotated := e.Annotate("lora tune 9 cannot be used")
	if annotated != e {
		t.Fatalf("Annotate returned a different error")
	}
	if annotated.Kind != KindValidation || annotated.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("annotation changed kind or status: %+v", annotated)
	}
	if annotated.Message != "not trained (lora tune 9 cannot be used)" {
		t.Fatalf("Message = %q", annotated.Message)
	}
}
