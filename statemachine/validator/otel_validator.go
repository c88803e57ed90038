package validator

import (
	"fmt"
	"strings"

	"github.com/amp-labs/tickfsm/statemachine"
)

// ValidateOTELInstrumentation checks that the machine's metric labels and span
// attributes will tell its states and transitions apart.
func ValidateOTELInstrumentation(src statemachine.Introspector) ([]ValidationError, error) {
	graph, err := load(src)
	if err != nil {
		return nil, err
	}

	var errors []ValidationError

	if graph.Name == "" {
		errors = append(errors, ValidationError{
			Code:     "OTEL_MACHINE_NAMING",
			Message:  "machine has no name - metrics are labelled 'unnamed' and spans carry an empty machine attribute",
			Location: Location{StateIndex: -1, TransitionIndex: -1},
			Fix:      &Fix{Description: "Pass a name to statemachine.NewBuilder"},
		})
	}

	for _, warning := range (&ambiguousLabelRule{}).Check(graph).Warnings {
		errors = append(errors, ValidationError{
			Code:     warning.Code,
			Message:  warning.Message,
			Location: warning.Location,
			Fix:      &Fix{Description: "Give the states distinct identifiers with Named or Identify"},
		})
	}

	return errors, nil
}

// ambiguousLabelRule warns about states sharing a description. Transition
// metrics and spans are labelled by description, so such states are merged
// in every dashboard.
type ambiguousLabelRule struct{}

func (r *ambiguousLabelRule) Name() string {
	return "AmbiguousStateLabel"
}

func (r *ambiguousLabelRule) Severity() Severity {
	return SeverityWarning
}

func (r *ambiguousLabelRule) Check(graph *Graph) RuleResult {
	var warnings []ValidationWarning

	byLabel := make(map[string][]int)
	for i, label := range graph.Labels {
		byLabel[label] = append(byLabel[label], i)
	}

	for i, label := range graph.Labels {
		indices := byLabel[label]
		if len(indices) < 2 || indices[0] != i {
			continue
		}

		parts := make([]string, len(indices))
		for j, index := range indices {
			parts[j] = fmt.Sprint(index)
		}

		warnings = append(warnings, ValidationWarning{
			Code:     "AMBIGUOUS_STATE_LABEL",
			Message:  fmt.Sprintf("States %s are all described as '%s'", strings.Join(parts, ", "), label),
			Location: stateLocation(graph, i),
		})
	}

	return RuleResult{Warnings: warnings}
}
