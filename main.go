package main

import (
	"github.com/mj1618/rotator/cmd"
	_ "github.com/mj1618/rotator/internal/platform/win32"
)

func main() {
	cmd.Execute()
}
