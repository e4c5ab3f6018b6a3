package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/onejobco/onejob/internal/model"
)

var (
	// ErrValidation indicates a required field was missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates the requested task or substack is unknown.
	ErrNotFound = errors.New("not found")
	// ErrNotSupported indicates the operation's scope has no remote backing.
	ErrNotSupported = errors.New("not supported in this scope")
	// ErrTransport indicates the backend could not be reached or answered
	// with a non-2xx status.
	ErrTransport = errors.New("transport failed")
)

// TransportError carries the HTTP status of a failed remote call.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return "request failed"
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *TransportError) Unwrap() error {
	return ErrTransport
}

// TaskUpdate is a partial update. Nil fields are left untouched. Deferral
// signals the defer transition explicitly so "back to todo after
// un-completing" and "pushed to the end of the queue" stay distinguishable.
type TaskUpdate struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *model.Status `json:"status,omitempty"`
	Deferral    bool          `json:"is_deferral,omitempty"`
}

// Gateway is the persistence contract for the top-level task stack. The
// remote HTTP client and the local demo store implement identical
// semantics so callers never care which one they hold.
type Gateway interface {
	// ListTasks returns every task, active ones ordered by sort order
	// followed by completed ones ordered newest first.
	ListTasks(ctx context.Context) ([]model.Task, error)

	// CreateTask appends a new task to the end of the active queue.
	// Fails with ErrValidation when the title is empty.
	CreateTask(ctx context.Context, title, description string) (model.Task, error)

	// UpdateTask applies a partial update. Fails with ErrNotFound for an
	// unknown id. Field-only edits never touch status or ordering.
	UpdateTask(ctx context.Context, id string, update TaskUpdate) (model.Task, error)

	// CreateSubstack creates an empty named substack under a task. Fails
	// with ErrNotFound for an unknown task and ErrValidation for an empty
	// or duplicate name.
	CreateSubstack(ctx context.Context, taskID, name string) (model.Substack, error)

	// DeleteTask removes a task. Deleting an absent id is not an error,
	// so retries are safe.
	DeleteTask(ctx context.Context, id string) error
}
