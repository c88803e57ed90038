// Package visualizer generates visual diagrams of built state machines from
// their introspection data.
//
//nolint:varnamelen // Short names idiomatic
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/tickfsm/statemachine"
)

// Visualizer errors.
var (
	ErrSourceNil = errors.New("source cannot be nil")
	ErrNoStates  = errors.New("source has no states")
)

// Source is the read-only view a diagram is drawn from. *statemachine.Machine
// satisfies it, and so does a published inspector snapshot.
type Source = statemachine.Introspector

// edge is one outgoing connection of a state.
type edge struct {
	from      int
	to        int
	condition string
	index     int
}

// graph is everything a diagram needs, collected once from a Source.
type graph struct {
	name     string
	enter    int
	labels   []string
	edges    []edge
	current  int
	previous int
}

func collect(src Source) (*graph, error) {
	if src == nil {
		return nil, ErrSourceNil
	}

	count := src.StateCount()
	if count == 0 {
		return nil, ErrNoStates
	}

	g := &graph{
		name:     src.Name(),
		enter:    src.EnterStateIndex(),
		labels:   make([]string, count),
		current:  -1,
		previous: -1,
	}

	for i := range count {
		g.labels[i] = src.StateDescription(i)

		info, err := src.Inspect(i)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect state %d: %w", i, err)
		}

		for _, next := range info.Next {
			g.edges = append(g.edges, edge{
				from:      i,
				to:        next.State.Index,
				condition: next.Condition,
				index:     next.TransitionIndex,
			})
		}

		g.current = info.CurrentStateIndex.GetOrElse(-1)
		g.previous = info.PreviousStateIndex.GetOrElse(-1)
	}

	return g, nil
}

func (g *graph) label(i int, opts Options) string {
	if opts.ShowIndices {
		return fmt.Sprintf("[%d] %s", i, g.labels[i])
	}

	return g.labels[i]
}

// GenerateMermaid converts a machine to a Mermaid state diagram.
func GenerateMermaid(src Source) (string, error) {
	return GenerateMermaidWithOptions(src, DefaultOptions())
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
// States are emitted as s<index> nodes so arbitrary descriptions stay valid.
func GenerateMermaidWithOptions(src Source, opts Options) (string, error) {
	g, err := collect(src)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	if opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	fmt.Fprintf(&sb, "stateDiagram-%s\n", direction(opts))

	if g.name != "" {
		fmt.Fprintf(&sb, "    %%%% %s\n", g.name)
	}

	for i := range g.labels {
		fmt.Fprintf(&sb, "    s%d: %s\n", i, escapeMermaid(g.label(i, opts)))
	}

	fmt.Fprintf(&sb, "    [*] --> s%d\n", g.enter)

	for _, e := range g.edges {
		label := ""
		if opts.ShowConditions && e.condition != "" {
			label = ": " + escapeMermaid(e.condition)
		}

		fmt.Fprintf(&sb, "    s%d --> s%d%s\n", e.from, e.to, label)
	}

	highlight := make(map[string]bool, len(opts.HighlightPath))
	for _, state := range opts.HighlightPath {
		highlight[state] = true
	}

	for i, label := range g.labels {
		switch {
		case opts.ShowRuntime && i == g.current:
			fmt.Fprintf(&sb, "    class s%d current\n", i)
		case opts.ShowRuntime && i == g.previous:
			fmt.Fprintf(&sb, "    class s%d previous\n", i)
		case highlight[label]:
			fmt.Fprintf(&sb, "    class s%d highlighted\n", i)
		}
	}

	palette := palettes[opts.Theme]
	if palette == nil {
		palette = palettes["default"]
	}

	sb.WriteString("\n")

	for _, class := range []string{"current", "previous", "highlighted"} {
		fmt.Fprintf(&sb, "    classDef %s %s\n", class, palette[class])
	}

	if opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String(), nil
}

// GenerateDOT converts a machine to a Graphviz digraph.
func GenerateDOT(src Source, opts Options) (string, error) {
	g, err := collect(src)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph %q {\n", g.name)

	rankdir := "TB"
	if direction(opts) == "LR" {
		rankdir = "LR"
	}

	fmt.Fprintf(&sb, "    rankdir=%s;\n", rankdir)
	sb.WriteString("    node [shape=box, style=rounded];\n")
	sb.WriteString("    start [shape=point];\n")

	for i := range g.labels {
		attrs := fmt.Sprintf("label=%q", g.label(i, opts))

		switch {
		case opts.ShowRuntime && i == g.current:
			attrs += ", style=\"rounded,bold\", color=darkgreen"
		case opts.ShowRuntime && i == g.previous:
			attrs += ", style=\"rounded,dashed\""
		}

		fmt.Fprintf(&sb, "    s%d [%s];\n", i, attrs)
	}

	fmt.Fprintf(&sb, "    start -> s%d;\n", g.enter)

	for _, e := range g.edges {
		if opts.ShowConditions && e.condition != "" {
			fmt.Fprintf(&sb, "    s%d -> s%d [label=%q];\n", e.from, e.to, fmt.Sprintf("%d: %s", e.index, e.condition))
		} else {
			fmt.Fprintf(&sb, "    s%d -> s%d;\n", e.from, e.to)
		}
	}

	sb.WriteString("}\n")

	return sb.String(), nil
}

var palettes = map[string]map[string]string{ //nolint:gochecknoglobals
	"default": {
		"current":     "fill:#c8e6c9,stroke:#2e7d32,stroke-width:3px",
		"previous":    "fill:#e1f5ff,stroke:#01579b,stroke-width:2px",
		"highlighted": "fill:#fff9c4,stroke:#f57f17,stroke-width:3px",
	},
	"dark": {
		"current":     "fill:#1b5e20,stroke:#a5d6a7,color:#fff,stroke-width:3px",
		"previous":    "fill:#0d47a1,stroke:#90caf9,color:#fff,stroke-width:2px",
		"highlighted": "fill:#e65100,stroke:#ffcc80,color:#fff,stroke-width:3px",
	},
}

func direction(opts Options) string {
	if opts.Direction == "" {
		return "TD"
	}

	return opts.Direction
}

// escapeMermaid drops characters that end a Mermaid label early.
func escapeMermaid(s string) string {
	return strings.NewReplacer("\n", " ", ":", "#58;", ";", "#59;").Replace(s)
}
