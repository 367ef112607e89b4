package workflow

import "github.com/ideen-revvo/credit-workflow/internal/domain/entity"

// State represents a step's position in the approval lifecycle
type State string

const (
	StateNotStarted State = entity.StepStatusNotStarted
	StateStarted    State = entity.StepStatusStarted
	StateApproved   State = entity.StepStatusApproved
	StateRejected   State = entity.StepStatusRejected
)

var validStates = map[State]bool{
	StateNotStarted: true,
	StateStarted:    true,
	StateApproved:   true,
	StateRejected:   true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid step state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
