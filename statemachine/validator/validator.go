// Package validator lints built state machines through their introspection
// data.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/tickfsm/statemachine"
)

// Validator errors.
var (
	ErrSourceNil = errors.New("source cannot be nil")
	ErrNoStates  = errors.New("source has no states")
)

// ValidationResult contains the results of validating a state machine.
type ValidationResult struct {
	Valid       bool
	Errors      []ValidationError
	Warnings    []ValidationWarning
	Suggestions []Suggestion
}

// ValidationError represents a validation error with a fix suggestion.
type ValidationError struct {
	Code     string   // Error code like "UNREACHABLE_STATE"
	Message  string   // Human-readable error message
	Location Location // Where the error occurred
	Fix      *Fix     // Optional fix suggestion
}

// ValidationWarning represents a non-critical issue.
type ValidationWarning struct {
	Code     string   // Warning code
	Message  string   // Human-readable warning message
	Location Location // Where the warning occurred
}

// Suggestion provides improvement recommendations.
type Suggestion struct {
	Message string // Suggestion description
	Example string // Code example showing the improvement
}

// Fix describes how to resolve an issue in the code that builds the machine.
type Fix struct {
	Description string
}

// Location identifies where an issue occurred. Indices are -1 when not
// applicable.
type Location struct {
	Machine         string
	State           string
	StateIndex      int
	TransitionIndex int
}

func stateLocation(graph *Graph, index int) Location {
	return Location{
		Machine:         graph.Name,
		State:           graph.Labels[index],
		StateIndex:      index,
		TransitionIndex: -1,
	}
}

// Validate runs the default rules.
func Validate(src statemachine.Introspector) (ValidationResult, error) {
	return ValidateWithRules(src, DefaultRules())
}

// ValidateStrict runs the default rules and treats warnings as errors.
func ValidateStrict(src statemachine.Introspector) (ValidationResult, error) {
	return ValidateWithRulesStrict(src, DefaultRules())
}

// ValidateWithRules validates using custom rules.
func ValidateWithRules(src statemachine.Introspector, rules []Rule) (ValidationResult, error) {
	graph, err := load(src)
	if err != nil {
		return ValidationResult{}, err
	}

	var result ValidationResult

	result.Valid = true

	for _, rule := range rules {
		ruleResult := rule.Check(graph)
		result.Errors = append(result.Errors, ruleResult.Errors...)
		result.Warnings = append(result.Warnings, ruleResult.Warnings...)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}

	result.Suggestions = generateSuggestions(graph)

	return result, nil
}

// ValidateWithRulesStrict validates with strict mode (treats warnings as errors).
func ValidateWithRulesStrict(src statemachine.Introspector, rules []Rule) (ValidationResult, error) {
	result, err := ValidateWithRules(src, rules)
	if err != nil {
		return result, err
	}

	for _, warning := range result.Warnings {
		result.Errors = append(result.Errors, ValidationError{
			Code:     warning.Code,
			Message:  warning.Message,
			Location: warning.Location,
		})
	}

	result.Warnings = nil

	if len(result.Errors) > 0 {
		result.Valid = false
	}

	return result, nil
}

// generateSuggestions provides general improvement suggestions.
func generateSuggestions(graph *Graph) []Suggestion {
	var suggestions []Suggestion

	for _, edge := range graph.Edges {
		if edge.Condition == "FuncCondition" {
			suggestions = append(suggestions, Suggestion{
				Message: "Consider naming function conditions so diagrams and logs can tell them apart",
				Example: `builder.TransitFunc(isMoving).Named("moving").FromNamed("Idle").ToNamed("Walk")`,
			})

			break
		}
	}

	for _, label := range graph.Labels {
		if label == "FuncState" {
			suggestions = append(suggestions, Suggestion{
				Message: "Consider giving function states a name",
				Example: `builder.AddFuncState("Idle", statemachine.StateHooks{OnUpdate: idle})`,
			})

			break
		}
	}

	return suggestions
}

// HasErrors returns true if the result has any errors.
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if the result has any warnings.
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results.
func (r ValidationResult) String() string {
	var sb strings.Builder

	if r.Valid {
		sb.WriteString("machine is valid\n")
	} else {
		fmt.Fprintf(&sb, "machine has %d error(s)\n", len(r.Errors))
	}

	for _, err := range r.Errors {
		fmt.Fprintf(&sb, "  [%s] %s", err.Code, err.Message)

		if err.Location.State != "" {
			fmt.Fprintf(&sb, " (state: %s)", err.Location.State)
		}

		sb.WriteString("\n")

		if err.Fix != nil {
			fmt.Fprintf(&sb, "    Fix: %s\n", err.Fix.Description)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "%d warning(s):\n", len(r.Warnings))

		for _, warn := range r.Warnings {
			fmt.Fprintf(&sb, "  [%s] %s\n", warn.Code, warn.Message)
		}
	}

	if len(r.Suggestions) > 0 {
		fmt.Fprintf(&sb, "%d suggestion(s) for improvement\n", len(r.Suggestions))
	}

	return sb.String()
}
