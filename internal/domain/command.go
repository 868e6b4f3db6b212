package domain

import "fmt"

// CommandKind enumerates the user gestures that drive the navigator.
type CommandKind int

const (
	// CmdActivate installs a plan (or a rank-2 synthetic plan) and renders.
	CmdActivate CommandKind = iota + 1

	// CmdStep moves the step axis by Direction and re-renders.
	CmdStep

	// CmdClear empties the navigator.
	CmdClear
)

// Command is one user gesture as a value, so the state machine can be
// driven (and tested) without any UI toolkit. Unused fields are ignored
// per kind.
type Command struct {
	Kind      CommandKind
	Variable  string
	Plan      *SlicePlan // nil with CmdActivate means the rank-2 path
	Direction int
}

// Apply dispatches a command to the matching transition. The returned
// frame is nil for CmdClear and for a step with no step axis.
func (n *Navigator) Apply(cmd Command) (*Frame, error) {
	switch cmd.Kind {
	case CmdActivate:
		if cmd.Plan == nil {
			return n.ActivateRank2(cmd.Variable)
		}
		return n.Activate(cmd.Variable, *cmd.Plan)
	case CmdStep:
		return n.Step(cmd.Direction)
	case CmdClear:
		n.Clear()
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}
