package model

import "time"

// Status is the authoritative lifecycle state of a task.
type Status string

const (
	StatusTodo     Status = "todo"
	StatusDone     Status = "done"
	StatusDeferred Status = "deferred"
)

// Task represents a single card on the stack
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Completed     bool       `json:"completed"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	DeferredAt    *time.Time `json:"deferred_at,omitempty"`
	DeferralCount int        `json:"deferral_count,omitempty"`
	SortOrder     int        `json:"sort_order"`
	Source        string     `json:"source,omitempty"`
	ExternalID    string     `json:"external_id,omitempty"`
	Substacks     []Substack `json:"substacks,omitempty"`
}

// NewTask creates a new active task with the given position in its scope
func NewTask(id, title, description string, sortOrder int) Task {
	return Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		CreatedAt:   time.Now(),
		SortOrder:   sortOrder,
	}
}

// IsActive returns true if the task still sits on the stack
func (t *Task) IsActive() bool {
	return t.Status != StatusDone
}

// MarkDone transitions the task into done and stamps the completion time.
func (t *Task) MarkDone(now time.Time) {
	t.Status = StatusDone
	t.Completed = true
	t.CompletedAt = &now
}

// MarkTodo reverses a completion. CompletedAt must not survive outside done.
func (t *Task) MarkTodo() {
	t.Status = StatusTodo
	t.Completed = false
	t.CompletedAt = nil
}

// Defer moves the task to the given end-of-queue position and records the
// deferral. The task stays active.
func (t *Task) Defer(now time.Time, sortOrder int) {
	t.Status = StatusTodo
	t.Completed = false
	t.CompletedAt = nil
	t.DeferredAt = &now
	t.DeferralCount++
	t.SortOrder = sortOrder
}

// FindSubstack returns the substack with the given id, or nil
func (t *Task) FindSubstack(id string) *Substack {
	for i := range t.Substacks {
		if t.Substacks[i].ID == id {
			return &t.Substacks[i]
		}
	}
	return nil
}
