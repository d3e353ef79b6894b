package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/metalagman/lintgate/internal/changeset"
	"github.com/metalagman/lintgate/internal/config"
	"github.com/metalagman/lintgate/internal/deps"
	"github.com/metalagman/lintgate/internal/proc"
	"github.com/metalagman/lintgate/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsOrder(t *testing.T) {
	t.Parallel()

	s := config.Settings{Android: true, DisabledRules: []string{"no-wildcard-imports", "max-line-length"}}
	got := Args(s, true, []string{"src/B.kt", "src/A.kt"})
	assert.Equal(t, []string{
		"--format",
		"--reporter=idea",
		"--android",
		"--disabled_rules=no-wildcard-imports,max-line-length",
		"src/B.kt",
		"src/A.kt",
	}, got)
}

func TestArgsCheckMode(t *testing.T) {
	t.Parallel()

	got := Args(config.Settings{}, false, []string{"src/**/*.kt"})
	assert.Equal(t, []string{"--reporter=idea", "src/**/*.kt"}, got)
	assert.NotContains(t, got, "--android")
}

func TestArgsFilesLastForAnyInput(t *testing.T) {
	t.Parallel()

	files := []string{"z.kt", "a.kt", "m/n.kt", "a.kt"}
	for _, s := range []config.Settings{
		{},
		{Android: true},
		{DisabledRules: []string{"r1"}},
		{Android: true, DisabledRules: []string{"r1", "r2", "r3"}},
	} {
		for _, format := range []bool{false, true} {
			got := Args(s, format, files)
			require.GreaterOrEqual(t, len(got), len(files))
			assert.Equal(t, files, got[len(got)-len(files):])

			disabled := 0
			for _, arg := range got {
				if len(arg) >= len(flagDisabledRules) && arg[:len(flagDisabledRules)] == flagDisabledRules {
					disabled++
				}
			}
			if len(s.DisabledRules) > 0 {
				assert.Equal(t, 1, disabled)
			} else {
				assert.Equal(t, 0, disabled)
			}
			if !s.Android {
				assert.NotContains(t, got, "--android")
			}
		}
	}
}

func TestArgsDisabledRulesScenario(t *testing.T) {
	t.Parallel()

	got := Args(config.Settings{DisabledRules: []string{"no-wildcard-imports", "max-line-length"}}, false, []string{"src/A.kt"})
	assert.Contains(t, got, "--disabled_rules=no-wildcard-imports,max-line-length")
}

func staticTargets(files ...string) TargetSupplier {
	return func(context.Context) ([]string, error) { return files, nil }
}

func TestTaskFailsOnViolations(t *testing.T) {
	t.Parallel()

	var calls []proc.Command
	tk := NewTask(Options{
		Name:      "lintCheck",
		Settings:  config.Settings{Version: "0.45.2"},
		Targets:   staticTargets("src/Bad.kt"),
		Classpath: deps.Static{"/cache/ktlint.jar", "/cache/reporter.jar"},
		JavaBin:   "java",
		MainClass: config.DefaultMainClass,
		Dir:       "/work/app",
		Runner: proc.RunnerFunc(func(_ context.Context, cmd proc.Command) (int, error) {
			calls = append(calls, cmd)
			return 1, nil
		}),
	})
	assert.Equal(t, task.GroupVerification, tk.Group)

	err := tk.Action(context.Background())
	require.ErrorIs(t, err, ErrCodeStyle)
	assert.Equal(t, "Code style check is failed.", err.Error())

	require.Len(t, calls, 1)
	assert.Equal(t, "java", calls[0].Name)
	assert.Equal(t, "/work/app", calls[0].Dir)
	assert.Equal(t, []string{
		"-cp", "/cache/ktlint.jar" + string(os.PathListSeparator) + "/cache/reporter.jar",
		"com.pinterest.ktlint.Main",
		"--reporter=idea",
		"src/Bad.kt",
	}, calls[0].Args)
}

func TestTaskPassesOnZeroExit(t *testing.T) {
	t.Parallel()

	tk := NewTask(Options{
		Name:      "lintFormat",
		Format:    true,
		Targets:   staticTargets("src/A.kt"),
		Classpath: deps.Static{"/k.jar"},
		JavaBin:   "java",
		MainClass: config.DefaultMainClass,
		Runner: proc.RunnerFunc(func(_ context.Context, cmd proc.Command) (int, error) {
			assert.Contains(t, cmd.Args, "--format")
			return 0, nil
		}),
	})
	require.NoError(t, tk.Action(context.Background()))
}

func TestTaskWithoutTargetsDoesNotRunLinter(t *testing.T) {
	t.Parallel()

	called := false
	classpathCalled := false
	tk := NewTask(Options{
		Name:    "lintCheckUncommittedChanges",
		Targets: staticTargets(),
		Classpath: classpathFunc(func(context.Context) ([]string, error) {
			classpathCalled = true
			return nil, nil
		}),
		Runner: proc.RunnerFunc(func(context.Context, proc.Command) (int, error) {
			called = true
			return 0, nil
		}),
	})

	err := tk.Action(context.Background())
	require.ErrorIs(t, err, task.ErrStopExecution)
	assert.False(t, called)
	assert.False(t, classpathCalled)
}

func TestTaskLaunchFailureIsNotStyleFailure(t *testing.T) {
	t.Parallel()

	launch := errors.New("exec: \"java\": executable file not found in $PATH")
	tk := NewTask(Options{
		Name:      "lintCheck",
		Targets:   staticTargets("src/A.kt"),
		Classpath: deps.Static{"/k.jar"},
		JavaBin:   "java",
		Runner: proc.RunnerFunc(func(context.Context, proc.Command) (int, error) {
			return -1, launch
		}),
	})

	err := tk.Action(context.Background())
	require.ErrorIs(t, err, launch)
	assert.NotErrorIs(t, err, ErrCodeStyle)
}

func TestTargetsAreResolvedAtExecution(t *testing.T) {
	t.Parallel()

	artifact := filepath.Join(t.TempDir(), "build", "tmp", "lintFindUncommittedChanges.txt")
	var got []string
	tk := NewTask(Options{
		Name:      "lintCheckUncommittedChanges",
		Targets:   FromArtifact(artifact),
		Classpath: deps.Static{"/k.jar"},
		JavaBin:   "java",
		Runner: proc.RunnerFunc(func(_ context.Context, cmd proc.Command) (int, error) {
			got = cmd.Args[3:]
			return 0, nil
		}),
	})

	require.NoError(t, changeset.WriteArtifact(artifact, []string{"src/B.kt", "src/A.kt"}))
	require.NoError(t, tk.Action(context.Background()))
	assert.Equal(t, []string{"--reporter=idea", "src/B.kt", "src/A.kt"}, got)
}

func TestStaticGlob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, p := range []string{"src/main/kotlin/A.kt", "src/test/kotlin/B.kt", "src/main/resources/x.txt", "build/Gen.kt"} {
		full := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "dir.kt"), 0o755))

	got, err := StaticGlob(dir, config.DefaultSourceGlob)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main/kotlin/A.kt", "src/test/kotlin/B.kt"}, got)
}

type classpathFunc func(context.Context) ([]string, error)

func (f classpathFunc) Classpath(ctx context.Context) ([]string, error) { return f(ctx) }
