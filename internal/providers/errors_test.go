package providers

import (
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"insufficient_quota":      ErrorQuota,
		"CUDA out of memory":      ErrorQuota,
		"429 rate":                ErrorRate,
		"context too long":        ErrorContext,
		"timeout":                 ErrorTransient,
		"bad request":             ErrorPermanent,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

func TestIsResourceExhaustion(t *testing.T) {
	if !IsResourceExhaustion(errors.New("resource exhausted")) {
		t.Fatal("expected exhaustion for OOM-class error")
	}
	if IsResourceExhaustion(errors.New("invalid api key")) {
		t.Fatal("permanent errors are not exhaustion")
	}
}
