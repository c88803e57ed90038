package statemachine

// graph is the arena the builder fills in: states and transitions live in
// stable-indexed slices and all cross references are indices.
type graph struct {
	states      []StateRef
	lookup      map[State]int
	transitions []Transition
	outgoing    [][]int
	incoming    [][]int
	enter       int
}

func newGraph(enter StateRef) *graph {
	g := &graph{lookup: make(map[State]int)}
	g.enter = g.add(enter)

	return g
}

// add returns the index of ref, appending it on first sight.
func (g *graph) add(ref StateRef) int {
	if index, ok := g.lookup[ref.State]; ok {
		return index
	}

	index := len(g.states)
	g.states = append(g.states, ref)
	g.lookup[ref.State] = index
	g.outgoing = append(g.outgoing, nil)
	g.incoming = append(g.incoming, nil)

	return index
}

// connect fans a resolved pending transition out into one Transition per
// source, preserving declaration order.
func (g *graph) connect(declaration int, pending *pendingTransition, sources []StateRef, destination StateRef) {
	to := g.add(destination)

	for _, source := range sources {
		from := g.add(source)

		transition := Transition{
			index:       len(g.transitions),
			declaration: declaration,
			source:      from,
			destination: to,
			condition:   pending.condition,
			identifier:  pending.identifier,
		}

		g.transitions = append(g.transitions, transition)
		g.outgoing[from] = append(g.outgoing[from], transition.index)
		g.incoming[to] = append(g.incoming[to], transition.index)
	}
}
