// Package plugin wires the lint and change-set tasks of one project into a task graph.
//
// Setup happens in two phases. Register creates the project's settings with
// their defaults and an empty dependency set; callers then apply user
// configuration to Settings. Finalize validates the result, installs the
// linter dependencies and registers every task.
package plugin

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/metalagman/lintgate/internal/changeset"
	"github.com/metalagman/lintgate/internal/config"
	"github.com/metalagman/lintgate/internal/deps"
	"github.com/metalagman/lintgate/internal/git"
	"github.com/metalagman/lintgate/internal/lint"
	"github.com/metalagman/lintgate/internal/proc"
	"github.com/metalagman/lintgate/internal/task"
	"github.com/rs/zerolog/log"
)

// DependencySetName names the dependency set holding the linter distribution.
const DependencySetName = "ktlint"

// ReporterCoordinate is the companion reporter put on the linter classpath.
var ReporterCoordinate = deps.Coordinate{Group: "com.doist", Artifact: "ktlint-idea-reporter", Version: "1.0.0"}

// LinterCoordinate returns the linter distribution for version.
func LinterCoordinate(version string) deps.Coordinate {
	return deps.Coordinate{Group: "com.pinterest", Artifact: "ktlint", Version: version, Classifier: "all"}
}

// Task names.
const (
	TaskCheck                    = "lintCheck"
	TaskFormat                   = "lintFormat"
	TaskFindUncommittedChanges   = "lintFindUncommittedChanges"
	TaskCheckUncommittedChanges  = "lintCheckUncommittedChanges"
	TaskFormatUncommittedChanges = "lintFormatUncommittedChanges"
	taskFindChangesFrom          = "lintFindChangesFrom"
	taskCheckChangesFrom         = "lintCheckChangesFrom"
	taskFormatChangesFrom        = "lintFormatChangesFrom"
)

// Project locates one linted project.
type Project struct {
	Name string
	// Dir is the absolute project directory.
	Dir string
	// RootDir is the absolute root of the whole build, where git runs.
	RootDir string
	// BuildDir holds generated artifacts; relative values resolve against Dir.
	BuildDir string
	// TaskPrefix qualifies task names in multi-project builds. Empty keeps names bare.
	TaskPrefix string
}

// TaskName qualifies name with the project's prefix.
func (p Project) TaskName(name string) string {
	if p.TaskPrefix == "" {
		return name
	}
	return p.TaskPrefix + ":" + name
}

func (p Project) buildDir() string {
	dir := p.BuildDir
	if dir == "" {
		dir = config.DefaultBuildDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.Dir, dir)
	}
	return dir
}

// Options carry what Finalize needs beyond the project settings.
type Options struct {
	Linter  config.Linter
	Sources config.Sources

	Resolver *deps.Resolver
	Runner   proc.Runner
	Stdout   io.Writer
	Stderr   io.Writer
}

// Plugin is the per-project lint setup.
type Plugin struct {
	project  Project
	settings *config.Settings
	deps     *deps.Set
}

// Register creates the plugin for project with default settings and an empty dependency set.
func Register(project Project) *Plugin {
	return &Plugin{
		project:  project,
		settings: &config.Settings{MainBranch: config.DefaultMainBranch},
		deps:     deps.NewSet(DependencySetName),
	}
}

// Project returns the project the plugin was registered for.
func (p *Plugin) Project() Project { return p.project }

// Settings returns the mutable project settings. Changes are honoured until Finalize.
func (p *Plugin) Settings() *config.Settings { return p.settings }

// Dependencies returns the linter dependency set.
func (p *Plugin) Dependencies() *deps.Set { return p.deps }

// Finalize validates the settings and registers the project's tasks in g.
func (p *Plugin) Finalize(g *task.Graph, opts Options) error {
	s := *p.settings
	version := strings.TrimSpace(s.Version)
	if version == "" {
		return fmt.Errorf("Please specify ktlint.version for project: %s", p.project.Name) //nolint:staticcheck // user facing message
	}
	if strings.TrimSpace(s.MainBranch) == "" {
		s.MainBranch = config.DefaultMainBranch
	}

	p.deps.DefaultDependencies(func() []deps.Coordinate {
		return []deps.Coordinate{LinterCoordinate(version), ReporterCoordinate}
	})

	resolver := opts.Resolver
	if resolver == nil {
		resolver = deps.NewResolver(opts.Linter.Repository, orDefault(opts.Linter.CacheDir, config.DefaultCacheDir()))
	}
	var classpath deps.Classpath = deps.Resolved{Set: p.deps, Resolver: resolver}
	if len(opts.Linter.Classpath) > 0 {
		classpath = deps.Static(opts.Linter.Classpath)
	}

	ext := opts.Sources.Extension
	if ext == "" {
		ext = config.DefaultExtension
	}
	glob := opts.Sources.Glob
	if glob == "" {
		glob = config.DefaultSourceGlob
	}
	kind := "`" + strings.TrimPrefix(ext, ".") + "`"

	newLint := func(name, description string, format bool, targets lint.TargetSupplier, dependsOn ...string) lint.Options {
		return lint.Options{
			Name:        p.project.TaskName(name),
			Description: description,
			DependsOn:   dependsOn,
			Format:      format,
			Settings:    s,
			Targets:     targets,
			Classpath:   classpath,
			JavaBin:     orDefault(opts.Linter.JavaBin, config.DefaultJavaBin),
			MainClass:   orDefault(opts.Linter.MainClass, config.DefaultMainClass),
			Dir:         p.project.Dir,
			Runner:      opts.Runner,
			Stdout:      opts.Stdout,
			Stderr:      opts.Stderr,
		}
	}
	newResolver := func(name, from string) *changeset.Resolver {
		return &changeset.Resolver{
			From:       from,
			RootDir:    p.project.RootDir,
			ProjectDir: p.project.Dir,
			Extension:  ext,
			Result:     changeset.ArtifactPath(p.project.buildDir(), p.project.TaskName(name)),
			Runner:     opts.Runner,
		}
	}

	all := lint.StaticGlob(p.project.Dir, glob)
	tasks := []task.Task{
		lint.NewTask(newLint(TaskCheck, "Checks code styles for all "+kind+" files in the project.", false, all)),
		lint.NewTask(newLint(TaskFormat, "Formats all "+kind+" files in the project.", true, all)),
	}

	findUncommitted := p.project.TaskName(TaskFindUncommittedChanges)
	uncommitted := newResolver(TaskFindUncommittedChanges, git.UncommittedRef)
	fromUncommitted := lint.FromArtifact(uncommitted.Result)
	tasks = append(tasks,
		uncommitted.Task(findUncommitted, "Finds all uncommitted changes in the project."),
		lint.NewTask(newLint(TaskCheckUncommittedChanges, "Checks code styles for all changed "+kind+" files.", false, fromUncommitted, findUncommitted)),
		lint.NewTask(newLint(TaskFormatUncommittedChanges, "Formats code style for all changed "+kind+" files.", true, fromUncommitted, findUncommitted)),
	)

	branch := Capitalize(s.MainBranch)
	findMain := p.project.TaskName(taskFindChangesFrom + branch)
	fromMain := newResolver(taskFindChangesFrom+branch, git.RemoteBranchRef(s.MainBranch))
	fromMainTargets := lint.FromArtifact(fromMain.Result)
	tasks = append(tasks,
		fromMain.Task(findMain, "Finds all changes in current branch compared with remote "+s.MainBranch+" branch."),
		lint.NewTask(newLint(taskCheckChangesFrom+branch, "Checks code style for all changed "+kind+" files against "+s.MainBranch+" branch.", false, fromMainTargets, findMain)),
		lint.NewTask(newLint(taskFormatChangesFrom+branch, "Formats code styles for all changed "+kind+" files against "+s.MainBranch+" branch.", true, fromMainTargets, findMain)),
	)

	if err := g.RegisterAll(tasks...); err != nil {
		return fmt.Errorf("register tasks for project %s: %w", p.project.Name, err)
	}

	log.Debug().Str("project", p.project.Name).Str("version", version).Str("main_branch", s.MainBranch).Msg("lint tasks registered")
	return nil
}

// Capitalize upper-cases the first letter of s and keeps the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
