//go:build !windows

package hooks

import (
	"context"
	"os/exec"
)

func systemShell(ctx context.Context, line string) *exec.Cmd {
	return exec.CommandContext(ctx, "/bin/sh", "-c", line)
}
