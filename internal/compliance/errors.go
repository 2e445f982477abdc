package compliance

import "fmt"

// ValidationError reports invalid caller input. It is surfaced to the user
// directly and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports that a lookup matched nothing. It is an expected
// outcome, not a fault.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// IncompleteTaskError rejects a task submission below 100% progress.
type IncompleteTaskError struct {
	TaskID   string
	Progress int
}

func (e *IncompleteTaskError) Error() string {
	return fmt.Sprintf("task %s cannot be submitted at %d%% progress", e.TaskID, e.Progress)
}

// CollaboratorError wraps a failure from an external collaborator (database,
// cache). The caller's in-memory state is left unchanged; no retry happens
// here.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
