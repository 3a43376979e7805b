package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/anonto42/recipehub/backend/internal/repositories"
)

func TestErrorMatching(t *testing.T) {
	wrapped := fmt.Errorf("toggle: %w", NotFound("Recipe"))

	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatal("kind sentinel should match any not found error")
	}
	if errors.Is(wrapped, ErrForbidden) {
		t.Fatal("different kinds must not match")
	}
	if !errors.Is(wrapped, NotFound("Recipe")) {
		t.Fatal("same kind and message should match")
	}
	if errors.Is(wrapped, NotFound("User")) {
		t.Fatal("different messages must not match")
	}
	if wrapped.Error() != "toggle: Recipe not found" {
		t.Fatalf("message %q", wrapped.Error())
	}
}

func TestNotFoundOr(t *testing.T) {
	err := notFoundOr(repositories.ErrNotFound, "User")
	assertKind(t, err, KindNotFound)

	other := errors.New("socket closed")
	if got := notFoundOr(other, "User"); got != other {
		t.Fatalf("other errors pass through, got %v", got)
	}
	if notFoundOr(nil, "User") != nil {
		t.Fatal("nil stays nil")
	}
}

func TestToggleState(t *testing.T) {
	if StateOf(false).Next() != Active || StateOf(true).Next() != Inactive {
		t.Fatal("toggle should flip")
	}
	if StateOf(true).Next().Next() != Active {
		t.Fatal("two toggles return to the start")
	}
	if Inactive.IsActive() || !Active.IsActive() {
		t.Fatal("IsActive mismatch")
	}
}
