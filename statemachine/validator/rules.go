//nolint:lll // Long validation messages
package validator

import (
	"fmt"

	"github.com/amp-labs/tickfsm/statemachine"
)

// Severity defines the severity level of a validation issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// RuleResult contains both errors and warnings from a rule check.
type RuleResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Rule defines a validation rule that checks a machine for specific issues.
type Rule interface {
	Name() string
	Severity() Severity
	Check(graph *Graph) RuleResult
}

// Edge is one transition of a validated machine.
type Edge struct {
	From      int
	To        int
	Condition string
	Index     int
}

// Graph is the static shape of a machine, read once through introspection.
type Graph struct {
	Name   string
	Enter  int
	Labels []string
	Edges  []Edge
	Next   [][]int
}

func load(src statemachine.Introspector) (*Graph, error) {
	if src == nil {
		return nil, ErrSourceNil
	}

	count := src.StateCount()
	if count == 0 {
		return nil, ErrNoStates
	}

	enter := src.EnterStateIndex()
	if enter < 0 || enter >= count {
		return nil, fmt.Errorf("%w: enter state %d not in [0, %d)",
			statemachine.ErrStateIndexOutOfRange, enter, count)
	}

	graph := &Graph{
		Name:   src.Name(),
		Enter:  enter,
		Labels: make([]string, count),
		Next:   make([][]int, count),
	}

	for i := range count {
		graph.Labels[i] = src.StateDescription(i)

		info, err := src.Inspect(i)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect state %d: %w", i, err)
		}

		for _, next := range info.Next {
			if next.State.Index < 0 || next.State.Index >= count {
				return nil, fmt.Errorf("%w: state %d has a transition to %d, not in [0, %d)",
					statemachine.ErrStateIndexOutOfRange, i, next.State.Index, count)
			}

			graph.Next[i] = append(graph.Next[i], len(graph.Edges))
			graph.Edges = append(graph.Edges, Edge{
				From:      i,
				To:        next.State.Index,
				Condition: next.Condition,
				Index:     next.TransitionIndex,
			})
		}
	}

	return graph, nil
}

// DefaultRules returns the standard set of validation rules.
func DefaultRules() []Rule {
	return []Rule{
		&unreachableStateRule{},
		&deadEndStateRule{},
		&selfTransitionRule{},
		&duplicateTransitionRule{},
		&ambiguousLabelRule{},
	}
}

// unreachableStateRule checks for states that cannot be reached from the enter state.
type unreachableStateRule struct{}

func (r *unreachableStateRule) Name() string {
	return "UnreachableState"
}

func (r *unreachableStateRule) Severity() Severity {
	return SeverityError
}

func (r *unreachableStateRule) Check(graph *Graph) RuleResult {
	var errors []ValidationError

	reachable := make([]bool, len(graph.Labels))
	reachable[graph.Enter] = true

	queue := []int{graph.Enter}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range graph.Next[current] {
			to := graph.Edges[e].To
			if !reachable[to] {
				reachable[to] = true
				queue = append(queue, to)
			}
		}
	}

	for i, ok := range reachable {
		if ok {
			continue
		}

		errors = append(errors, ValidationError{
			Code:     "UNREACHABLE_STATE",
			Message:  fmt.Sprintf("State '%s' cannot be reached from enter state '%s'", graph.Labels[i], graph.Labels[graph.Enter]),
			Location: stateLocation(graph, i),
			Fix: &Fix{
				Description: fmt.Sprintf("Add a transition into '%s' or drop the transitions leaving it", graph.Labels[i]),
			},
		})
	}

	return RuleResult{Errors: errors}
}

// deadEndStateRule warns about states without outgoing transitions. Once
// current, such a state stays current until Reset.
type deadEndStateRule struct{}

func (r *deadEndStateRule) Name() string {
	return "DeadEndState"
}

func (r *deadEndStateRule) Severity() Severity {
	return SeverityWarning
}

func (r *deadEndStateRule) Check(graph *Graph) RuleResult {
	var warnings []ValidationWarning

	for i, next := range graph.Next {
		if len(next) == 0 {
			warnings = append(warnings, ValidationWarning{
				Code:     "DEAD_END_STATE",
				Message:  fmt.Sprintf("State '%s' has no outgoing transitions and is only left by Reset", graph.Labels[i]),
				Location: stateLocation(graph, i),
			})
		}
	}

	return RuleResult{Warnings: warnings}
}

// selfTransitionRule warns about transitions that exit and re-enter the same state.
type selfTransitionRule struct{}

func (r *selfTransitionRule) Name() string {
	return "SelfTransition"
}

func (r *selfTransitionRule) Severity() Severity {
	return SeverityWarning
}

func (r *selfTransitionRule) Check(graph *Graph) RuleResult {
	var warnings []ValidationWarning

	for _, edge := range graph.Edges {
		if edge.From != edge.To {
			continue
		}

		location := stateLocation(graph, edge.From)
		location.TransitionIndex = edge.Index

		warnings = append(warnings, ValidationWarning{
			Code:     "SELF_TRANSITION",
			Message:  fmt.Sprintf("Transition %d re-enters '%s' whenever '%s' holds", edge.Index, graph.Labels[edge.From], edge.Condition),
			Location: location,
		})
	}

	return RuleResult{Warnings: warnings}
}

// duplicateTransitionRule checks for transitions with the same source,
// destination and condition. The later one can never fire first.
type duplicateTransitionRule struct{}

func (r *duplicateTransitionRule) Name() string {
	return "DuplicateTransition"
}

func (r *duplicateTransitionRule) Severity() Severity {
	return SeverityWarning
}

func (r *duplicateTransitionRule) Check(graph *Graph) RuleResult {
	var warnings []ValidationWarning

	type key struct {
		from, to  int
		condition string
	}

	seen := make(map[key]int)

	for _, edge := range graph.Edges {
		k := key{from: edge.From, to: edge.To, condition: edge.Condition}

		first, ok := seen[k]
		if !ok {
			seen[k] = edge.Index

			continue
		}

		location := stateLocation(graph, edge.From)
		location.TransitionIndex = edge.Index

		warnings = append(warnings, ValidationWarning{
			Code: "DUPLICATE_TRANSITION",
			Message: fmt.Sprintf("Transition %d from '%s' to '%s' with condition '%s' duplicates transition %d",
				edge.Index, graph.Labels[edge.From], graph.Labels[edge.To], edge.Condition, first),
			Location: location,
		})
	}

	return RuleResult{Warnings: warnings}
}
