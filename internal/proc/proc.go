// Package proc runs external processes for lintgate tasks.
//
// Exec is the generic process description. ExecWithResult adds a single
// declared output file so the task graph can track what a process produces.
// Neither type writes captured output on its own; the owning task does that
// after the process completes.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrResultNotSet is returned when an ExecWithResult runs without a result path.
var ErrResultNotSet = errors.New("result file is not set")

// Command is a single process invocation handed to a Runner.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner starts a process and waits for it.
// A returned error means the process could not be run at all; a process that
// ran and exited non-zero reports its code with a nil error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (exitCode int, err error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) (int, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (int, error) {
	return f(ctx, cmd)
}

// OSRunner runs commands with os/exec.
type OSRunner struct{}

// Run implements Runner.
func (OSRunner) Run(ctx context.Context, c Command) (int, error) {
	log.Debug().Str("dir", c.Dir).Str("cmd", c.Name).Strs("args", c.Args).Msg("running command")
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("run %s: %w", c.Name, err)
}

// ExitError reports a non-zero exit that was not ignored.
type ExitError struct {
	Command  string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process %q finished with non-zero exit value %d", e.Command, e.ExitCode)
}

// Result is what a finished Exec reports.
type Result struct {
	ExitCode int
}

// Exec describes one external process execution.
type Exec struct {
	Name string
	Args []string
	Dir  string
	Env  []string

	Stdout io.Writer
	Stderr io.Writer

	// IgnoreExitValue records a non-zero exit code instead of failing.
	IgnoreExitValue bool

	Runner Runner
}

// Run starts the process and waits for it to finish.
func (e *Exec) Run(ctx context.Context) (Result, error) {
	if e.Name == "" {
		return Result{}, fmt.Errorf("exec: command is not set")
	}
	runner := e.Runner
	if runner == nil {
		runner = OSRunner{}
	}
	cmd := Command{
		Name:   e.Name,
		Args:   e.Args,
		Dir:    e.Dir,
		Env:    e.Env,
		Stdout: e.Stdout,
		Stderr: e.Stderr,
	}
	code, err := runner.Run(ctx, cmd)
	if err != nil {
		return Result{ExitCode: code}, err
	}
	if code != 0 && !e.IgnoreExitValue {
		return Result{ExitCode: code}, &ExitError{Command: cmd.String(), ExitCode: code}
	}
	return Result{ExitCode: code}, nil
}

// ExecWithResult is an Exec with one declared output file.
type ExecWithResult struct {
	Exec
	Result string
}

// Run validates the declared output and runs the process.
func (e *ExecWithResult) Run(ctx context.Context) (Result, error) {
	if strings.TrimSpace(e.Result) == "" {
		return Result{}, ErrResultNotSet
	}
	return e.Exec.Run(ctx)
}
