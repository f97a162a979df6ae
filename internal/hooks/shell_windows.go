//go:build windows

package hooks

import (
	"context"
	"os"
	"os/exec"
	"syscall"
)

// systemShell runs line through cmd.exe with the command line set verbatim.
func systemShell(ctx context.Context, line string) *exec.Cmd {
	shell := os.Getenv("ComSpec")
	if shell == "" {
		shell = "cmd.exe"
	}
	cmd := exec.CommandContext(ctx, shell)
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: shell + ` /S /C "` + line + `"`}
	return cmd
}
