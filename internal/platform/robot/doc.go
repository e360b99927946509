// Package robot captures screen regions through robotgo.
// All functionality requires CGo; without it the package is empty.
package robot
