package workflow

// BuildStepStateMachine creates a state machine configured for the approval
// step lifecycle: NOT_STARTED -> STARTED -> {APPROVED, REJECTED}. APPROVED
// and REJECTED are terminal.
func BuildStepStateMachine(initialState State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StateNotStarted).
		Permit(TriggerStart, StateStarted)

	builder.Configure(StateStarted).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	// APPROVED and REJECTED have no outgoing transitions

	return builder.Build(initialState)
}
