package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle is an opaque OS window handle. Zero means "no window".
type Handle uintptr

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// Empty reports whether the rectangle has no area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// String formats the bounds as "x,y,w,h".
func (b Bounds) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", b.X, b.Y, b.Width, b.Height)
}

// ParseBBox parses a "x,y,w,h" string into a Bounds.
func ParseBBox(s string) (*Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: expected x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		vals[i] = v
	}
	return &Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// Window is a live top-level window as reported by the window manager.
type Window struct {
	Title     string `yaml:"title"               json:"title"`
	Handle    Handle `yaml:"handle"              json:"handle"`
	Minimized bool   `yaml:"minimized,omitempty" json:"minimized,omitempty"`
}
