//go:build windows && cgo

package win32

import (
	"github.com/mj1618/rotator/internal/platform"
	"github.com/mj1618/rotator/internal/platform/robot"
)

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			WindowManager: NewWindowManager(),
			Screenshotter: robot.NewScreenshotter(),
			PortLister:    NewPortLister(),
		}, nil
	}
}
