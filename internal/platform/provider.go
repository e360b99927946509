package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// Provider bundles all platform backends for the current OS.
type Provider struct {
	WindowManager WindowManager
	Screenshotter Screenshotter
	PortLister    PortLister
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("rotator is not supported on %s/%s; supported: windows/amd64 with cgo", runtime.GOOS, runtime.GOARCH)

// ErrWindowNotFound is returned by WindowManager.Find when no window has the title.
var ErrWindowNotFound = errors.New("window not found")

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/win32/init.go for the Windows registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
