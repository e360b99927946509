package win32

import (
	"fmt"

	"github.com/mj1618/rotator/internal/platform"
)

// findExact returns the handle of the first window titled exactly title.
// Slot titles are unique, so a partial match would resolve one slot to
// another slot's window.
func findExact(wins []platform.Window, title string) (platform.Handle, error) {
	for _, w := range wins {
		if w.Title == title {
			return w.Handle, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", platform.ErrWindowNotFound, title)
}
