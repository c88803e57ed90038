package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/amp-labs/tickfsm/examples/locomotion"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios/default.yaml
var defaultScript []byte

var (
	errUnknownSwitch   = errors.New("unknown switch")
	errUnexpectedState = errors.New("unexpected state")
	errEmptyScript     = errors.New("script has no steps")
)

// Script is a list of steps, each setting switches and ticking.
type Script struct {
	Name  string       `yaml:"name"`
	Steps []ScriptStep `yaml:"steps"`
}

// ScriptStep applies Set, ticks Ticks times (once when zero) and, when
// Expect is set, checks the current state afterwards.
type ScriptStep struct {
	Set    map[string]bool `yaml:"set"`
	Ticks  int             `yaml:"ticks"`
	Expect string          `yaml:"expect"`
}

func (s ScriptStep) ticks() int {
	if s.Ticks <= 0 {
		return 1
	}

	return s.Ticks
}

// tickRecord describes the controller after one tick.
type tickRecord struct {
	Tick     uint64
	State    string
	Distance float64
}

// loadScript reads the script at path, or the built-in one when path is empty.
func loadScript(path string) (*Script, error) {
	data := defaultScript

	if path != "" {
		var err error

		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}

	if len(script.Steps) == 0 {
		return nil, errEmptyScript
	}

	return &script, nil
}

func applySwitches(c *locomotion.Controller, set map[string]bool) error {
	for name, on := range set {
		if !c.Set(name, on) {
			return fmt.Errorf("%w %q", errUnknownSwitch, name)
		}
	}

	return nil
}

// Run plays the script against c, calling onTick after every tick.
func (s *Script) Run(ctx context.Context, c *locomotion.Controller, onTick func(tickRecord)) error {
	for i, step := range s.Steps {
		if err := applySwitches(c, step.Set); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		for range step.ticks() {
			if err := ctx.Err(); err != nil {
				return err
			}

			c.Machine.TickContext(ctx)

			if onTick != nil {
				onTick(record(c))
			}
		}

		if step.Expect != "" {
			if current := currentState(c); current != step.Expect {
				return fmt.Errorf("step %d: %w: got %q, want %q", i, errUnexpectedState, current, step.Expect)
			}
		}
	}

	return nil
}

// frames flattens the script into one entry per tick. The first tick of a
// step carries its switch values; the others are nil.
func (s *Script) frames() []map[string]bool {
	var frames []map[string]bool

	for _, step := range s.Steps {
		for i := range step.ticks() {
			if i == 0 {
				frames = append(frames, step.Set)
			} else {
				frames = append(frames, nil)
			}
		}
	}

	return frames
}

func currentState(c *locomotion.Controller) string {
	gait, ok := c.Gait()
	if !ok {
		return ""
	}

	return gait.String()
}

func record(c *locomotion.Controller) tickRecord {
	return tickRecord{
		Tick:     c.Machine.TickCount(),
		State:    currentState(c),
		Distance: c.Distance(),
	}
}

func switchValues(c *locomotion.Controller) map[string]bool {
	return map[string]bool{
		c.Moving.String():    c.Moving.On(),
		c.Sprinting.String(): c.Sprinting.On(),
	}
}
