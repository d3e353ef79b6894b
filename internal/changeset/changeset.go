// Package changeset finds the source files a project changed relative to a git reference.
package changeset

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metalagman/lintgate/internal/git"
	"github.com/metalagman/lintgate/internal/proc"
	"github.com/metalagman/lintgate/internal/task"
	"github.com/rs/zerolog/log"
)

// Resolver diffs the work tree against From and records the changed source
// files of one project in an artifact file.
type Resolver struct {
	// From is the reference to diff against, e.g. HEAD or origin/main.
	From string
	// RootDir is the repository root; git runs here and reports paths relative to it.
	RootDir string
	// ProjectDir is the directory of the project being linted.
	ProjectDir string
	// Extension is the source file suffix, e.g. ".kt".
	Extension string
	// Result is the artifact path.
	Result string

	Runner proc.Runner
}

// ArtifactPath returns where the resolver task named taskName writes its result.
func ArtifactPath(buildDir, taskName string) string {
	return filepath.Join(buildDir, "tmp", artifactName(taskName)+".txt")
}

func artifactName(taskName string) string {
	return strings.ReplaceAll(taskName, ":", "_")
}

// Resolve runs git diff and writes the filtered file list to r.Result.
func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	var out bytes.Buffer
	e := &proc.ExecWithResult{
		Exec: proc.Exec{
			Name:   git.Binary,
			Args:   git.DiffNameOnlyArgs(r.From),
			Dir:    r.RootDir,
			Stdout: &out,
			Stderr: os.Stderr,
			Runner: r.Runner,
		},
		Result: r.Result,
	}
	if _, err := e.Run(ctx); err != nil {
		return nil, fmt.Errorf("git diff from %s: %w", r.From, err)
	}

	files := Filter(out.String(), r.RootDir, r.ProjectDir, r.Extension)
	if err := WriteArtifact(r.Result, files); err != nil {
		return nil, err
	}
	log.Debug().Str("from", r.From).Str("result", r.Result).Int("files", len(files)).Msg("changed files resolved")
	return files, nil
}

// Task returns a graph task running the resolver. The task never reports up to date.
func (r *Resolver) Task(name, description string) task.Task {
	return task.Task{
		Name:         name,
		Description:  description,
		Group:        task.GroupOther,
		UpToDateWhen: func() bool { return false },
		Action: func(ctx context.Context) error {
			_, err := r.Resolve(ctx)
			return err
		},
	}
}

// Filter turns raw `git diff --name-only` output into paths relative to
// projectDir, keeping only files inside projectDir that end with ext.
func Filter(diffOutput, rootDir, projectDir, ext string) []string {
	root := filepath.ToSlash(filepath.Clean(rootDir))
	prefix := filepath.ToSlash(filepath.Clean(projectDir)) + "/"

	var out []string
	for _, line := range strings.Split(diffOutput, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		abs := root + "/" + line
		if !strings.HasPrefix(abs, prefix) || !strings.HasSuffix(abs, ext) {
			continue
		}
		out = append(out, strings.TrimPrefix(abs, prefix))
	}
	return out
}

// WriteArtifact overwrites path with files joined by newlines.
func WriteArtifact(path string, files []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(files, "\n")), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// ReadArtifact reads the file list written by a resolver. Blank lines are dropped.
func ReadArtifact(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}
