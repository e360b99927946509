package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestIs_MatchesCode(t *testing.T) {
	err := NewConflict("Lineage2M - A", 1, 2)
	if !Is(err, ErrConflict) {
		t.Error("expected conflict code")
	}
	if Is(err, ErrNotConnected) {
		t.Error("conflict should not match NOT_CONNECTED")
	}
}

func TestIs_Wrapped(t *testing.T) {
	err := fmt.Errorf("tick: %w", NewWindowNotFound("X"))
	if !Is(err, ErrWindowNotFound) {
		t.Error("wrapped error should still match")
	}
}

func TestIs_PlainError(t *testing.T) {
	if Is(stderrors.New("boom"), ErrConfig) {
		t.Error("plain error should not match any code")
	}
	if Is(nil, ErrConfig) {
		t.Error("nil should not match")
	}
}

func TestError_IncludesCause(t *testing.T) {
	err := NewSendFailed("enter_game", io.ErrClosedPipe)
	if !strings.Contains(err.Error(), "SEND_FAILED") {
		t.Errorf("message should contain code: %s", err.Error())
	}
	if !stderrors.Is(err, io.ErrClosedPipe) {
		t.Error("cause should be reachable with errors.Is")
	}
}

func TestNewConflict_Details(t *testing.T) {
	err := NewConflict("A", 3, 5)
	if err.Details["held_by"] != 3 || err.Details["requested"] != 5 {
		t.Errorf("unexpected details: %v", err.Details)
	}
}
