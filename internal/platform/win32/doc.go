// Package win32 provides Windows platform support using user32 window APIs.
// Screen capture comes from the robot package and requires CGo; without
// CGo the package registers no provider.
package win32
