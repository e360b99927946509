package automation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the operator to approve a lifecycle change.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// AlwaysConfirm approves every prompt. Used for --yes and the MCP server.
type AlwaysConfirm struct{}

func (AlwaysConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }

// PromptConfirmer asks on a terminal and accepts "y" or "yes".
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p PromptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// UIHooks lets a front end hide conflicting controls while automation runs.
type UIHooks interface {
	// Lock is called after a confirmed start, before the first tick.
	Lock()
	// Unlock is called after a confirmed stop.
	Unlock()
}

// NoopUI ignores lifecycle notifications.
type NoopUI struct{}

func (NoopUI) Lock()   {}
func (NoopUI) Unlock() {}
