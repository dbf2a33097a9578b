package store_test

import (
	"errors"
	"testing"

	"github.com/ssoriche/prioflow/workflow/store"
)

func TestSerializationErrorUnwrapsToUnavailableAndCause(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &store.SerializationError{Cause: cause}

	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected errors.Is(err, ErrUnavailable) to succeed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is(err, cause) to succeed, got %v", err)
	}

	var target *store.SerializationError
	if !errors.As(err, &target) {
		t.Fatalf("expected errors.As to find *SerializationError, got %v", err)
	}
}
