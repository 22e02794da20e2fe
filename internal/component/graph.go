// Package component schedules a set of configuration steps with declared
// prerequisites. Steps are released for execution as their prerequisites
// finish and report healthy; the traversal is an explicit pop-and-requeue
// work queue, so cancellation and re-entrancy stay visible.
package component

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nais/konvergator/internal/health"
)

// RunFunc executes one configuration step.
type RunFunc func(ctx context.Context) error

// HealthFunc reports the step's derived status after execution. A nil
// HealthFunc means the step is healthy once it has run.
type HealthFunc func() health.Verdict

type node struct {
	name     string
	run      RunFunc
	healthFn HealthFunc
	deps     []string
	executed bool
}

// Graph is a DAG of named steps. Not safe for concurrent use.
type Graph struct {
	nodes map[string]*node
	order []string
}

func NewGraph() *Graph {
	return &Graph{nodes: map[string]*node{}}
}

// Add registers a step with its prerequisites. Prerequisites may be added
// later; they are resolved at Run time.
func (g *Graph) Add(name string, run RunFunc, healthFn HealthFunc, deps ...string) error {
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("step %q already registered", name)
	}
	g.nodes[name] = &node{name: name, run: run, healthFn: healthFn, deps: deps}
	g.order = append(g.order, name)
	return nil
}

// Status reports the derived verdict for a step: Unknown for unregistered
// names, Waiting until executed, then whatever the step's health func says.
func (g *Graph) Status(name string) health.Verdict {
	n, ok := g.nodes[name]
	if !ok {
		return health.VerdictUnknown
	}
	if !n.executed {
		return health.VerdictWaiting
	}
	if n.healthFn == nil {
		return health.VerdictActive
	}
	return n.healthFn()
}

// NotReadyError reports a run that stalled because an executed prerequisite
// never went healthy.
type NotReadyError struct {
	Step       string
	Dependency string
	Verdict    health.Verdict
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("step %q blocked: dependency %q is %s", e.Step, e.Dependency, e.Verdict)
}

// Run executes every step in dependency order. A step is ready once all its
// prerequisites have executed and report healthy. The loop pops ready steps
// off the queue and requeues the rest; a full pass without progress means
// either an unhealthy prerequisite or a dependency cycle.
func (g *Graph) Run(ctx context.Context) error {
	// Seed only pending steps so a rerun of a finished graph is a no-op
	// and steps added later run against the already executed ones.
	queue := make([]string, 0, len(g.order))
	for _, name := range g.order {
		if !g.nodes[name].executed {
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		var requeued []string
		progressed := false
		for _, name := range queue {
			n := g.nodes[name]
			ready, err := g.readyForExecution(n)
			if err != nil {
				return err
			}
			if !ready {
				requeued = append(requeued, name)
				continue
			}
			if err := n.run(ctx); err != nil {
				return fmt.Errorf("step %q: %w", name, err)
			}
			n.executed = true
			progressed = true
		}

		if !progressed {
			return g.stalled(requeued)
		}
		queue = requeued
	}
	return nil
}

// readyForExecution is true when every prerequisite has executed and is
// healthy, and the step itself has not yet run.
func (g *Graph) readyForExecution(n *node) (bool, error) {
	if n.executed {
		return false, nil
	}
	for _, dep := range n.deps {
		d, ok := g.nodes[dep]
		if !ok {
			return false, fmt.Errorf("step %q depends on unregistered step %q", n.name, dep)
		}
		if !d.executed || g.Status(dep) != health.VerdictActive {
			return false, nil
		}
	}
	return true, nil
}

func (g *Graph) stalled(pending []string) error {
	for _, name := range pending {
		n := g.nodes[name]
		for _, dep := range n.deps {
			if d := g.nodes[dep]; d.executed {
				if v := g.Status(dep); v != health.VerdictActive {
					return &NotReadyError{Step: name, Dependency: dep, Verdict: v}
				}
			}
		}
	}
	sort.Strings(pending)
	return fmt.Errorf("dependency cycle involving steps: %s", strings.Join(pending, ", "))
}
