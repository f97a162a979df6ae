// Package hooks runs the external command lines configured around a tool
// update.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Runner executes a hook command line and waits for it to finish. A non-zero
// exit status is reported through the int result, not as an error; errors
// mean the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, commandLine string) (int, error)
}

// useSystemShell hands command lines to the system shell untouched. Windows
// hook lines carry backslash paths that a POSIX parser would unescape.
var useSystemShell = runtime.GOOS == "windows"

// ShellRunner interprets hook command lines with a POSIX shell interpreter. On
// Windows the line is passed verbatim to the system shell instead.
type ShellRunner struct {
	// Dir is the working directory hooks run in.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellRunner creates a runner rooted at dir.
func NewShellRunner(dir string, stdout, stderr io.Writer) *ShellRunner {
	return &ShellRunner{Dir: dir, Stdout: stdout, Stderr: stderr}
}

// Run implements Runner.
func (r *ShellRunner) Run(ctx context.Context, commandLine string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if useSystemShell {
		return r.runSystem(ctx, commandLine)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(commandLine), "hook")
	if err != nil {
		return 1, fmt.Errorf("parse hook %q: %w", commandLine, err)
	}

	stdout, stderr := r.outputs()
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, stdout, stderr),
	}
	if r.Dir != "" {
		opts = append(opts, interp.Dir(r.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return 1, fmt.Errorf("create hook interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}
		return 1, fmt.Errorf("run hook %q: %w", commandLine, err)
	}
	return 0, nil
}

func (r *ShellRunner) runSystem(ctx context.Context, commandLine string) (int, error) {
	cmd := systemShell(ctx, commandLine)
	cmd.Dir = r.Dir
	cmd.Stdout, cmd.Stderr = r.outputs()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("run hook %q: %w", commandLine, err)
	}
	return 0, nil
}

func (r *ShellRunner) outputs() (io.Writer, io.Writer) {
	stdout, stderr := r.Stdout, r.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return stdout, stderr
}
