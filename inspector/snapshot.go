package inspector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amp-labs/tickfsm/optional"
	"github.com/amp-labs/tickfsm/statemachine"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a snapshot format other than json or yaml.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Snapshot is an immutable copy of a machine's introspection data at one
// tick. It implements statemachine.Introspector, so visualizers and
// validators can work from a snapshot loaded off disk as well as from a live
// machine.
type Snapshot struct {
	Machine            string                   `json:"machine"            yaml:"machine"`
	MachineID          string                   `json:"machineId"          yaml:"machineId"`
	Tick               uint64                   `json:"tick"               yaml:"tick"`
	CapturedAt         time.Time                `json:"capturedAt"         yaml:"capturedAt"`
	EnterState         int                      `json:"enterState"         yaml:"enterState"`
	CurrentState       optional.Value[int]      `json:"currentState"       yaml:"currentState"`
	PreviousState      optional.Value[int]      `json:"previousState"      yaml:"previousState"`
	PreviousTransition optional.Value[int]      `json:"previousTransition" yaml:"previousTransition"`
	States             []statemachine.GraphInfo `json:"states"             yaml:"states"`
}

var _ statemachine.Introspector = (*Snapshot)(nil)

// Capture copies the introspection data of m. It must run on the goroutine
// that ticks m.
func Capture(m *statemachine.Machine) *Snapshot {
	snap := &Snapshot{
		Machine:            m.Name(),
		MachineID:          m.ID(),
		Tick:               m.TickCount(),
		CapturedAt:         time.Now().UTC(),
		EnterState:         m.EnterStateIndex(),
		CurrentState:       m.CurrentStateIndex(),
		PreviousState:      m.PreviousStateIndex(),
		PreviousTransition: m.PreviousTransitionIndex(),
		States:             make([]statemachine.GraphInfo, m.StateCount()),
	}

	for i := range snap.States {
		// Indices are in range by construction.
		snap.States[i], _ = m.Inspect(i)
	}

	return snap
}

func (s *Snapshot) Name() string {
	return s.Machine
}

func (s *Snapshot) StateCount() int {
	return len(s.States)
}

func (s *Snapshot) EnterStateIndex() int {
	return s.EnterState
}

// StateDescription returns the description of the state at index. It panics
// if index is out of range.
func (s *Snapshot) StateDescription(index int) string {
	return s.States[index].Selected.Description
}

func (s *Snapshot) Inspect(index int) (statemachine.GraphInfo, error) {
	if index < 0 || index >= len(s.States) {
		return statemachine.GraphInfo{}, fmt.Errorf("%w: %d not in [0, %d)",
			statemachine.ErrStateIndexOutOfRange, index, len(s.States))
	}

	return s.States[index], nil
}

// Current returns the description of the current state, or the empty string
// when the machine had not started.
func (s *Snapshot) Current() string {
	index, ok := s.CurrentState.Get()
	if !ok || index >= len(s.States) {
		return ""
	}

	return s.StateDescription(index)
}

// Write encodes the snapshot as "json" or "yaml".
func (s *Snapshot) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(s)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd

		if err := enc.Encode(s); err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save writes the snapshot to path, choosing the format from its extension.
func (s *Snapshot) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := s.Write(f, formatOf(path)); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

// LoadSnapshot reads a snapshot written by Save, choosing the format from
// the file extension.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap Snapshot

	if formatOf(path) == "json" {
		err = json.Unmarshal(data, &snap)
	} else {
		err = yaml.Unmarshal(data, &snap)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}

	if err := snap.check(); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	return &snap, nil
}

// check verifies that every state index the snapshot refers to is in range.
func (s *Snapshot) check() error {
	if len(s.States) == 0 {
		return nil
	}

	inRange := func(field string, index int) error {
		if index < 0 || index >= len(s.States) {
			return fmt.Errorf("%w: %s %d not in [0, %d)",
				statemachine.ErrStateIndexOutOfRange, field, index, len(s.States))
		}

		return nil
	}

	if err := inRange("enterState", s.EnterState); err != nil {
		return err
	}

	if index, ok := s.CurrentState.Get(); ok {
		if err := inRange("currentState", index); err != nil {
			return err
		}
	}

	if index, ok := s.PreviousState.Get(); ok {
		if err := inRange("previousState", index); err != nil {
			return err
		}
	}

	for i, info := range s.States {
		if err := inRange(fmt.Sprintf("states[%d].selected", i), info.Selected.Index); err != nil {
			return err
		}

		for j, c := range info.Previous {
			if err := inRange(fmt.Sprintf("states[%d].previous[%d]", i, j), c.State.Index); err != nil {
				return err
			}
		}

		for j, c := range info.Next {
			if err := inRange(fmt.Sprintf("states[%d].next[%d]", i, j), c.State.Index); err != nil {
				return err
			}
		}
	}

	return nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}

	return "yaml"
}
