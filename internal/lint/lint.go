// Package lint builds the tasks that run ktlint over a project.
package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/metalagman/lintgate/internal/changeset"
	"github.com/metalagman/lintgate/internal/config"
	"github.com/metalagman/lintgate/internal/deps"
	"github.com/metalagman/lintgate/internal/logging"
	"github.com/metalagman/lintgate/internal/proc"
	"github.com/metalagman/lintgate/internal/task"
)

const (
	flagFormat        = "--format"
	flagReporter      = "--reporter=idea"
	flagAndroid       = "--android"
	flagDisabledRules = "--disabled_rules="
)

// ErrCodeStyle matches any CheckError.
var ErrCodeStyle = errors.New("code style check failed")

// CheckError reports that the linter ran and exited non-zero.
type CheckError struct {
	ExitCode int
}

func (e *CheckError) Error() string {
	return "Code style check is failed."
}

// Is makes errors.Is(err, ErrCodeStyle) match.
func (e *CheckError) Is(target error) bool {
	return target == ErrCodeStyle
}

// Args builds the linter arguments. Files always come last, in the given order.
func Args(s config.Settings, format bool, files []string) []string {
	args := make([]string, 0, len(files)+4)
	if format {
		args = append(args, flagFormat)
	}
	args = append(args, flagReporter)
	if s.Android {
		args = append(args, flagAndroid)
	}
	if len(s.DisabledRules) > 0 {
		args = append(args, flagDisabledRules+strings.Join(s.DisabledRules, ","))
	}
	return append(args, files...)
}

// TargetSupplier returns the files to lint. It is called when the task runs,
// never when it is registered.
type TargetSupplier func(ctx context.Context) ([]string, error)

// StaticGlob lists files under projectDir matching pattern, relative to projectDir.
func StaticGlob(projectDir, pattern string) TargetSupplier {
	return func(context.Context) ([]string, error) {
		matches, err := doublestar.Glob(os.DirFS(projectDir), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		sort.Strings(matches)
		return matches, nil
	}
}

// FromArtifact reads the file list a change-set resolver wrote to path.
func FromArtifact(path string) TargetSupplier {
	return func(context.Context) ([]string, error) {
		return changeset.ReadArtifact(path)
	}
}

// Options configure a lint task.
type Options struct {
	Name        string
	Description string
	DependsOn   []string

	Format    bool
	Settings  config.Settings
	Targets   TargetSupplier
	Classpath deps.Classpath

	JavaBin   string
	MainClass string
	// Dir is the project directory; the linter runs there so relative targets resolve.
	Dir string

	Runner proc.Runner
	Stdout io.Writer
	Stderr io.Writer
}

// NewTask returns a graph task that lints the supplied targets.
func NewTask(opts Options) task.Task {
	return task.Task{
		Name:        opts.Name,
		Description: opts.Description,
		Group:       task.GroupVerification,
		DependsOn:   opts.DependsOn,
		Action: func(ctx context.Context) error {
			return run(ctx, opts)
		},
	}
}

func run(ctx context.Context, opts Options) error {
	logger := logging.Task(opts.Name)

	targets, err := opts.Targets(ctx)
	if err != nil {
		return fmt.Errorf("resolve targets: %w", err)
	}
	if len(targets) == 0 {
		logger.Info().Msg("no files to lint")
		return task.ErrStopExecution
	}

	classpath, err := opts.Classpath.Classpath(ctx)
	if err != nil {
		return fmt.Errorf("resolve linter classpath: %w", err)
	}

	javaArgs := []string{"-cp", strings.Join(classpath, string(os.PathListSeparator)), opts.MainClass}
	javaArgs = append(javaArgs, Args(opts.Settings, opts.Format, targets)...)

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	e := &proc.Exec{
		Name:            opts.JavaBin,
		Args:            javaArgs,
		Dir:             opts.Dir,
		Stdout:          stdout,
		Stderr:          stderr,
		IgnoreExitValue: true,
		Runner:          opts.Runner,
	}
	logger.Debug().Int("files", len(targets)).Bool("format", opts.Format).Msg("starting linter")
	res, err := e.Run(ctx)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &CheckError{ExitCode: res.ExitCode}
	}
	return nil
}
