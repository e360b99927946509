//go:build windows

package win32

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"github.com/mj1618/rotator/internal/platform"
	"golang.org/x/sys/windows"
)

// enumState collects top-level windows during a single EnumWindows pass.
type enumState struct {
	windows []platform.Window
}

// enumCallback is created once: syscall callbacks are a finite resource.
var enumCallback = windows.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
	state := (*enumState)(unsafe.Pointer(lparam))
	if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
		return 1
	}
	title := windowText(hwnd)
	if strings.TrimSpace(title) == "" {
		return 1
	}
	iconic, _, _ := procIsIconic.Call(hwnd)
	state.windows = append(state.windows, platform.Window{
		Title:     title,
		Handle:    platform.Handle(hwnd),
		Minimized: iconic != 0,
	})
	return 1 // continue enumeration
})

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLength.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf)
}

// Win32WindowManager implements platform.WindowManager with user32.
type Win32WindowManager struct{}

// NewWindowManager creates a new Windows window manager.
func NewWindowManager() *Win32WindowManager {
	return &Win32WindowManager{}
}

// Windows returns every visible, titled top-level window.
func (wm *Win32WindowManager) Windows() ([]platform.Window, error) {
	state := &enumState{}
	r, _, err := procEnumWindows.Call(enumCallback, uintptr(unsafe.Pointer(state)))
	if r == 0 && len(state.windows) == 0 {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}
	return state.windows, nil
}

func (wm *Win32WindowManager) ListTitles(filter string) ([]string, error) {
	wins, err := wm.Windows()
	if err != nil {
		return nil, err
	}
	filterLower := strings.ToLower(filter)
	var titles []string
	for _, w := range wins {
		if filterLower == "" || strings.Contains(strings.ToLower(strings.TrimSpace(w.Title)), filterLower) {
			titles = append(titles, w.Title)
		}
	}
	return titles, nil
}

// Find returns the first window whose title is exactly title.
func (wm *Win32WindowManager) Find(title string) (platform.Handle, error) {
	wins, err := wm.Windows()
	if err != nil {
		return 0, err
	}
	return findExact(wins, title)
}

func (wm *Win32WindowManager) SetBounds(h platform.Handle, b platform.Bounds) error {
	r, _, err := procMoveWindow.Call(uintptr(h), uintptr(b.X), uintptr(b.Y), uintptr(b.Width), uintptr(b.Height), 1)
	if r == 0 {
		return fmt.Errorf("MoveWindow failed: %w", err)
	}
	return nil
}

func (wm *Win32WindowManager) Minimize(h platform.Handle) error {
	procShowWindow.Call(uintptr(h), swMinimize)
	return nil
}

func (wm *Win32WindowManager) Restore(h platform.Handle) error {
	procShowWindow.Call(uintptr(h), swRestore)
	return nil
}

func (wm *Win32WindowManager) IsMinimized(h platform.Handle) (bool, error) {
	r, _, _ := procIsIconic.Call(uintptr(h))
	return r != 0, nil
}

func (wm *Win32WindowManager) RaiseAbove(h platform.Handle, after platform.Handle) error {
	if after != 0 {
		if r, _, err := procSetWindowPos.Call(uintptr(after), hwndBottom, 0, 0, 0, 0, swpNoSize|swpNoMove); r == 0 {
			return fmt.Errorf("SetWindowPos(bottom) failed: %w", err)
		}
	}
	if r, _, err := procSetWindowPos.Call(uintptr(h), hwndTop, 0, 0, 0, 0, swpNoSize|swpNoMove); r == 0 {
		return fmt.Errorf("SetWindowPos(top) failed: %w", err)
	}
	return nil
}

func (wm *Win32WindowManager) Activate(h platform.Handle) error {
	if r, _, err := procSetForegroundWindow.Call(uintptr(h)); r == 0 {
		return fmt.Errorf("SetForegroundWindow failed: %w", err)
	}
	return nil
}
