package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/metalagman/lintgate/internal/config"
	"github.com/metalagman/lintgate/internal/deps"
	"github.com/metalagman/lintgate/internal/git"
	"github.com/metalagman/lintgate/internal/plugin"
	"github.com/metalagman/lintgate/internal/proc"
	"github.com/metalagman/lintgate/internal/task"
	"github.com/rs/zerolog/log"
)

type buildEnv struct {
	runner proc.Runner
	stdout io.Writer
	stderr io.Writer
}

// resolveProjects turns configured projects into absolute locations.
func resolveProjects(ctx context.Context, cfg config.Config, dir string) ([]plugin.Project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve working dir: %w", err)
	}
	name := filepath.Base(absDir)
	absDir = realPath(absDir)
	rootDir, err := git.TopLevel(ctx, absDir)
	if err != nil {
		log.Warn().Err(err).Str("dir", absDir).Msg("git root not found, using working directory as build root")
		rootDir = absDir
	}
	rootDir = realPath(rootDir)

	if len(cfg.Projects) == 0 {
		return []plugin.Project{{
			Name:     name,
			Dir:      absDir,
			RootDir:  rootDir,
			BuildDir: cfg.BuildDir,
		}}, nil
	}

	projects := make([]plugin.Project, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		projDir := p.Dir
		if !filepath.IsAbs(projDir) {
			projDir = filepath.Join(absDir, projDir)
		}
		project := plugin.Project{
			Name:     p.Name,
			Dir:      realPath(filepath.Clean(projDir)),
			RootDir:  rootDir,
			BuildDir: cfg.BuildDir,
		}
		if len(cfg.Projects) > 1 {
			project.TaskPrefix = p.Name
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// realPath resolves symlinks so project dirs share a prefix with the git root,
// which git always reports resolved. Paths that do not exist are kept as is.
func realPath(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

// buildGraph registers every project first, applies the configuration, then
// finalizes each project into one task graph.
func buildGraph(ctx context.Context, cfg config.Config, dir string, env buildEnv) (*task.Graph, error) {
	projects, err := resolveProjects(ctx, cfg, dir)
	if err != nil {
		return nil, err
	}

	plugins := make([]*plugin.Plugin, 0, len(projects))
	for _, p := range projects {
		plugins = append(plugins, plugin.Register(p))
	}

	settings := cfg.ProjectSettings()
	for _, p := range plugins {
		*p.Settings() = settings
	}

	resolver := deps.NewResolver(cfg.Linter.Repository, cfg.Linter.CacheDir)
	g := task.NewGraph()
	for _, p := range plugins {
		err := p.Finalize(g, plugin.Options{
			Linter:   cfg.Linter,
			Sources:  cfg.Sources,
			Resolver: resolver,
			Runner:   env.runner,
			Stdout:   env.stdout,
			Stderr:   env.stderr,
		})
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}
