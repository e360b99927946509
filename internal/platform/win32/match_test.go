package win32

import (
	"errors"
	"testing"

	"github.com/mj1618/rotator/internal/platform"
)

func TestFindExact(t *testing.T) {
	wins := []platform.Window{
		{Title: "L2M 10", Handle: 10},
		{Title: "L2M 2", Handle: 2},
	}

	h, err := findExact(wins, "L2M 2")
	if err != nil || h != 2 {
		t.Errorf("findExact(L2M 2) = %d, %v", h, err)
	}

	if _, err := findExact(wins, "L2M 1"); !errors.Is(err, platform.ErrWindowNotFound) {
		t.Errorf("prefix of another title should not match, got %v", err)
	}
	if _, err := findExact(wins, "L2M 10 "); !errors.Is(err, platform.ErrWindowNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
