package platform

import "image"

// WindowManager enumerates, positions and orders top-level windows.
type WindowManager interface {
	// ListTitles returns the titles of all visible top-level windows whose
	// title contains filter (case-insensitive). An empty filter matches all.
	ListTitles(filter string) ([]string, error)

	// Find resolves a title to the first window carrying exactly that title.
	// Returns an error satisfying errors.Is(err, ErrWindowNotFound) if none.
	Find(title string) (Handle, error)

	SetBounds(h Handle, b Bounds) error
	Minimize(h Handle) error
	Restore(h Handle) error
	IsMinimized(h Handle) (bool, error)

	// RaiseAbove places h at the top of the z-order. When after is non-zero
	// it is first pushed to the bottom so h ends up directly above it.
	RaiseAbove(h Handle, after Handle) error

	// Activate gives h keyboard focus.
	Activate(h Handle) error
}

// Screenshotter captures regions of the current display.
type Screenshotter interface {
	CaptureRegion(b Bounds) (image.Image, error)
}

// PortLister enumerates serial ports currently present on the system.
type PortLister interface {
	ListPorts() ([]string, error)
}
