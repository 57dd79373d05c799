// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/zero88/sxbuild/internal/issue"
	"github.com/zero88/sxbuild/pkg/fspath"

	"golang.org/x/sync/errgroup"
)

// State is the final state of a task.
type State int

const (
	Pending State = iota
	Succeeded
	UpToDate
	Failed
	Skipped
)

var (
	// ErrUpToDate is returned by a task that found nothing to do. The task
	// counts as succeeded.
	ErrUpToDate = errors.New("up to date")

	// ErrUnknownTask is returned when a task depends on an undeclared task.
	ErrUnknownTask = errors.New("unknown task")
)

type (
	// Task is a unit of work with declared inputs (the tasks it depends on)
	// and outputs (locations only it may write).
	Task struct {
		ID      string
		Deps    []string
		Outputs []string
		Run     func(ctx context.Context) error
	}

	// Result records how a task ended.
	Result struct {
		ID       string
		State    State
		Err      error
		Duration time.Duration
	}

	// Report lists every task result in execution order.
	Report struct {
		Results []Result
	}

	// Executor runs tasks in dependency order with bounded parallelism. A
	// failed task marks its transitive dependents skipped; unrelated tasks
	// keep running. Running tasks are never cancelled.
	Executor struct {
		parallelism int
		tasks       map[string]Task
		order       []string
		owners      map[string]string
	}
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case UpToDate:
		return "up-to-date"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// NewExecutor creates an executor running at most parallelism tasks at a
// time. Values below 1 mean 1.
func NewExecutor(parallelism int) *Executor {
	return &Executor{
		parallelism: max(parallelism, 1),
		tasks:       make(map[string]Task),
		owners:      make(map[string]string),
	}
}

// Add registers t. Duplicate ids and outputs overlapping another task's
// outputs are configuration errors.
func (e *Executor) Add(t Task) error {
	if t.ID == "" || t.Run == nil {
		return fmt.Errorf("task needs an id and a run function")
	}
	if _, exists := e.tasks[t.ID]; exists {
		return issue.NewConfigurationError("", "tasks", "duplicate task %q", t.ID)
	}
	for _, out := range t.Outputs {
		out = filepath.Clean(out)
		for claimed, owner := range e.owners {
			if fspath.Overlaps(claimed, out) {
				return issue.NewConfigurationError("", "outputs",
					"task %q output %s overlaps %s owned by task %q", t.ID, out, claimed, owner)
			}
		}
	}
	for _, out := range t.Outputs {
		e.owners[filepath.Clean(out)] = t.ID
	}
	e.tasks[t.ID] = t
	e.order = append(e.order, t.ID)
	return nil
}

func (e *Executor) graph() (*Graph, error) {
	g := New()
	for _, id := range e.order {
		g.AddNode(id)
	}
	for _, id := range e.order {
		for _, dep := range e.tasks[id].Deps {
			if !g.Has(dep) {
				return nil, fmt.Errorf("task %q depends on %q: %w", id, dep, ErrUnknownTask)
			}
			g.AddEdge(dep, id)
		}
	}
	return g, nil
}

// Run executes every task. The returned error covers graph problems only
// (unknown dependencies, cycles); task failures are in the report.
func (e *Executor) Run(ctx context.Context) (*Report, error) {
	g, err := e.graph()
	if err != nil {
		return nil, err
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	results := make(map[string]*Result, len(order))
	remaining := make(map[string]int, len(order))
	// remaining counts the unfinished inputs of each task.
	for _, id := range order {
		results[id] = &Result{ID: id}
		for _, dep := range g.Dependents(id) {
			remaining[dep]++
		}
	}

	var skip func(id, cause string, err error)
	skip = func(id, cause string, err error) {
		r := results[id]
		if r.State != Pending {
			return
		}
		r.State = Skipped
		r.Err = err
		slog.Warn("skipping task", "task", id, "cause", cause)
		for _, dep := range g.Dependents(id) {
			skip(dep, cause, fmt.Errorf("skipped: input %q did not complete", id))
		}
	}

	var ready []string
	for _, id := range order {
		if remaining[id] == 0 {
			ready = append(ready, id)
		}
	}

	var eg errgroup.Group
	eg.SetLimit(e.parallelism)
	done := make(chan string, len(order))
	inflight := 0

	for len(ready) > 0 || inflight > 0 {
		for len(ready) > 0 {
			id := ready[0]
			ready = ready[1:]
			if err := ctx.Err(); err != nil {
				skip(id, "context done", err)
				continue
			}
			inflight++
			task := e.tasks[id]
			r := results[id]
			eg.Go(func() error {
				runTask(ctx, task, r)
				done <- task.ID
				return nil
			})
		}
		if inflight == 0 {
			break
		}

		id := <-done
		inflight--
		r := results[id]
		for _, dep := range g.Dependents(id) {
			if r.State == Failed {
				skip(dep, id, fmt.Errorf("skipped: input %q failed", id))
				continue
			}
			remaining[dep]--
			if remaining[dep] == 0 && results[dep].State == Pending {
				ready = append(ready, dep)
			}
		}
	}
	_ = eg.Wait()

	report := &Report{Results: make([]Result, 0, len(order))}
	for _, id := range order {
		report.Results = append(report.Results, *results[id])
	}
	return report, nil
}

func runTask(ctx context.Context, t Task, r *Result) {
	start := time.Now()
	slog.Debug("running task", "task", t.ID)
	err := t.Run(ctx)
	r.Duration = time.Since(start)
	switch {
	case err == nil:
		r.State = Succeeded
	case errors.Is(err, ErrUpToDate):
		r.State = UpToDate
	default:
		r.State = Failed
		r.Err = err
		slog.Error("task failed", "task", t.ID, "error", err)
		return
	}
	slog.Debug("task finished", "task", t.ID, "state", r.State, "duration", r.Duration)
}

// Result returns the result for id.
func (r *Report) Result(id string) (Result, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return Result{}, false
}

// Failed returns the results of failed tasks.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State == Failed {
			out = append(out, res)
		}
	}
	return out
}

// Err joins the errors of every failed task, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("task %s: %w", res.ID, res.Err))
	}
	return errors.Join(errs...)
}
