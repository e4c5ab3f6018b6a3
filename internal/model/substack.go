package model

import "time"

// Substack is a nested task list owned by a single parent task. Its tasks
// order independently of the top-level stack.
type Substack struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSubstack creates an empty substack
func NewSubstack(id, name string) Substack {
	return Substack{
		ID:        id,
		Name:      name,
		Tasks:     []Task{},
		CreatedAt: time.Now(),
	}
}
