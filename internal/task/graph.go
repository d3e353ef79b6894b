// Package task implements the named task graph lintgate registers and runs.
package task

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/metalagman/lintgate/internal/logging"
)

const (
	// GroupVerification holds tasks that check or format code.
	GroupVerification = "verification"
	// GroupOther holds helper tasks.
	GroupOther = "other"
)

// Action is the work a task performs.
type Action func(ctx context.Context) error

// Task is a named unit of work with declared predecessors.
type Task struct {
	Name        string
	Description string
	Group       string
	DependsOn   []string

	// UpToDateWhen lets a task skip execution. Nil means the task always runs.
	UpToDateWhen func() bool

	Action Action
}

// Outcome is the recorded state of a task after a run.
type Outcome string

const (
	OutcomeExecuted Outcome = "EXECUTED"
	OutcomeSkipped  Outcome = "SKIPPED"
	OutcomeUpToDate Outcome = "UP-TO-DATE"
	OutcomeFailed   Outcome = "FAILED"
)

// Result records how a single task finished.
type Result struct {
	Name     string
	Outcome  Outcome
	Duration time.Duration
	Err      error
}

// Report lists task results in execution order.
type Report struct {
	Results []Result
}

// Outcome returns the outcome recorded for name.
func (r Report) Outcome(name string) (Outcome, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res.Outcome, true
		}
	}
	return "", false
}

// Graph holds tasks in registration order.
type Graph struct {
	tasks []*Task
	index map[string]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// Register adds t to the graph. Dependencies may name tasks registered later;
// they are checked when a plan is built.
func (g *Graph) Register(t Task) (*Task, error) {
	name, err := g.check(t, nil)
	if err != nil {
		return nil, err
	}
	return g.add(name, t), nil
}

// RegisterAll adds every task or none of them.
func (g *Graph) RegisterAll(tasks ...Task) error {
	names := make([]string, len(tasks))
	pending := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		name, err := g.check(t, pending)
		if err != nil {
			return err
		}
		pending[name] = true
		names[i] = name
	}
	for i, t := range tasks {
		g.add(names[i], t)
	}
	return nil
}

func (g *Graph) check(t Task, pending map[string]bool) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", invalidf("task name is empty")
	}
	if _, ok := g.index[name]; ok || pending[name] {
		return "", invalidf("duplicate task %q", name)
	}
	if t.Action == nil {
		return "", invalidf("task %q has no action", name)
	}
	return name, nil
}

func (g *Graph) add(name string, t Task) *Task {
	t.Name = name
	stored := t
	g.index[name] = len(g.tasks)
	g.tasks = append(g.tasks, &stored)
	return &stored
}

// Task returns the task registered under name.
func (g *Graph) Task(name string) (*Task, bool) {
	idx, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.tasks[idx], true
}

// Tasks returns copies of all tasks in registration order.
func (g *Graph) Tasks() []Task {
	out := make([]Task, 0, len(g.tasks))
	for _, t := range g.tasks {
		out = append(out, *t)
	}
	return out
}

// Match resolves a selector to task names. An exact name wins; otherwise the
// selector matches every task whose unqualified name (after the last ':') equals it.
func (g *Graph) Match(selector string) ([]string, error) {
	selector = strings.TrimSpace(selector)
	if _, ok := g.index[selector]; ok {
		return []string{selector}, nil
	}
	var out []string
	for _, t := range g.tasks {
		if shortName(t.Name) == selector {
			out = append(out, t.Name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, selector)
	}
	return out, nil
}

func shortName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Plan returns the requested tasks and their dependencies in execution order.
// Ties between independent tasks are broken by registration order.
func (g *Graph) Plan(names ...string) ([]string, error) {
	included := make(map[int]bool)
	var visit func(idx int, via string) error
	visit = func(idx int, via string) error {
		if included[idx] {
			return nil
		}
		included[idx] = true
		for _, dep := range g.tasks[idx].DependsOn {
			depIdx, ok := g.index[dep]
			if !ok {
				return invalidf("task %q depends on unknown task %q", via, dep)
			}
			if err := visit(depIdx, dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range names {
		idx, ok := g.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, name)
		}
		if err := visit(idx, name); err != nil {
			return nil, err
		}
	}

	indeg := make(map[int]int, len(included))
	outgoing := make(map[int][]int, len(included))
	for idx := range included {
		for _, dep := range g.tasks[idx].DependsOn {
			depIdx := g.index[dep]
			indeg[idx]++
			outgoing[depIdx] = append(outgoing[depIdx], idx)
		}
	}

	ready := &intMinHeap{}
	for idx := range included {
		if indeg[idx] == 0 {
			heap.Push(ready, idx)
		}
	}
	order := make([]string, 0, len(included))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		order = append(order, g.tasks[n].Name)
		for _, m := range outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	if len(order) != len(included) {
		return nil, cycleError(g.findCycle(included))
	}
	return order, nil
}

// Run executes the plan for names one task at a time. The first failing task
// stops the run, so its dependents never start.
func (g *Graph) Run(ctx context.Context, names ...string) (Report, error) {
	order, err := g.Plan(names...)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		t := g.tasks[g.index[name]]
		logger := logging.Task(name)

		if t.UpToDateWhen != nil && t.UpToDateWhen() {
			logger.Info().Msg("task is up to date")
			report.Results = append(report.Results, Result{Name: name, Outcome: OutcomeUpToDate})
			continue
		}

		logger.Info().Msg("running task")
		started := time.Now()
		runErr := t.Action(ctx)
		res := Result{Name: name, Duration: time.Since(started)}
		switch {
		case runErr == nil:
			res.Outcome = OutcomeExecuted
			logger.Info().Dur("duration", res.Duration).Msg("task finished")
		case errors.Is(runErr, ErrStopExecution):
			res.Outcome = OutcomeSkipped
			logger.Info().Msg("task skipped")
		default:
			res.Outcome = OutcomeFailed
			res.Err = runErr
			report.Results = append(report.Results, res)
			logger.Error().Err(runErr).Msg("task failed")
			return report, fmt.Errorf("task %s: %w", name, runErr)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// findCycle returns one cycle among the included tasks, following dependency
// edges in declaration order.
func (g *Graph) findCycle(included map[int]bool) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int]int, len(included))
	var stack []int
	var cycle []string

	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		stack = append(stack, u)
		for _, dep := range g.tasks[u].DependsOn {
			v := g.index[dep]
			switch color[v] {
			case white:
				if dfs(v) {
					return true
				}
			case gray:
				start := 0
				for i, n := range stack {
					if n == v {
						start = i
						break
					}
				}
				for _, n := range stack[start:] {
					cycle = append(cycle, g.tasks[n].Name)
				}
				cycle = append(cycle, g.tasks[v].Name)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[u] = black
		return false
	}

	for idx := range g.tasks {
		if !included[idx] || color[idx] != white {
			continue
		}
		if dfs(idx) {
			break
		}
	}
	return cycle
}
