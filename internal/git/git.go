// Package git wraps the git command line used by lintgate.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Binary is the git executable name.
const Binary = "git"

// Available checks if the given directory is inside a git work tree.
func Available(ctx context.Context, dir string) bool {
	cmd := exec.CommandContext(ctx, Binary, "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// RunCmdOutput runs git in dir and returns its stdout.
func RunCmdOutput(ctx context.Context, dir string, args ...string) (string, error) {
	log.Debug().Str("dir", dir).Str("cmd", Binary).Strs("args", args).Msg("running git command")
	cmd := exec.CommandContext(ctx, Binary, args...)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// TopLevel returns the absolute root of the work tree containing dir.
func TopLevel(ctx context.Context, dir string) (string, error) {
	if !Available(ctx, dir) {
		return "", fmt.Errorf("not a git repository: %s", dir)
	}
	out, err := RunCmdOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("resolve repository root: %w", err)
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return "", fmt.Errorf("resolve repository root: empty path")
	}
	return filepath.Clean(root), nil
}

// DiffNameOnlyArgs returns the arguments that list paths changed since from.
// Paths are printed verbatim; by default git C-quotes non-ASCII names.
func DiffNameOnlyArgs(from string) []string {
	return []string{"-c", "core.quotePath=false", "diff", "--name-only", from}
}

// UncommittedRef is the reference uncommitted changes are diffed against.
const UncommittedRef = "HEAD"

// RemoteBranchRef returns the origin tracking reference for branch.
func RemoteBranchRef(branch string) string {
	return "origin/" + branch
}
