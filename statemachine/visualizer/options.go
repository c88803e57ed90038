package visualizer

// Options configures the visualization output.
type Options struct {
	// ShowConditions shows transition conditions as edge labels
	ShowConditions bool

	// ShowIndices prefixes state labels with their index
	ShowIndices bool

	// ShowRuntime marks the current and previous state
	ShowRuntime bool

	// Direction controls diagram flow: "TD" (top-down) or "LR" (left-right)
	Direction string

	// HighlightPath highlights states by description
	HighlightPath []string

	// Theme controls the color scheme: "default" or "dark"
	Theme string

	// Fenced wraps Mermaid output in a markdown code fence
	Fenced bool
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		ShowConditions: true,
		ShowRuntime:    true,
		Direction:      "TD",
		Theme:          "default",
		Fenced:         true,
	}
}

// WithShowConditions enables/disables transition conditions.
func (o Options) WithShowConditions(show bool) Options {
	o.ShowConditions = show

	return o
}

// WithShowIndices enables/disables state index prefixes.
func (o Options) WithShowIndices(show bool) Options {
	o.ShowIndices = show

	return o
}

// WithShowRuntime enables/disables current and previous state marking.
func (o Options) WithShowRuntime(show bool) Options {
	o.ShowRuntime = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlightPath sets states to highlight.
func (o Options) WithHighlightPath(path []string) Options {
	o.HighlightPath = path

	return o
}

// WithTheme sets the color theme.
func (o Options) WithTheme(theme string) Options {
	o.Theme = theme

	return o
}

// WithFenced enables/disables the markdown code fence.
func (o Options) WithFenced(fenced bool) Options {
	o.Fenced = fenced

	return o
}
