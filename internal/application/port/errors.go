package port

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrStoreUnavailable is returned when the backing store cannot be reached
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDuplicateWorkflow is returned when a workflow already exists for a request
	ErrDuplicateWorkflow = errors.New("workflow already exists for request")

	// ErrConcurrentModification is returned when a conditioned write lost a
	// race: the entity's status no longer matches what the writer observed.
	// Callers should reload current state before retrying.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)
