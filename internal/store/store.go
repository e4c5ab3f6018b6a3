package store

import (
	"sort"
	"sync"
	"time"

	"github.com/onejobco/onejob/internal/model"
)

// Scope identifies one ordered task list: the top-level stack or a single
// substack's list. Ordering rules apply per scope and never mix.
type Scope struct {
	SubstackID string
}

// TopLevel is the scope of the main stack.
var TopLevel = Scope{}

// SubstackScope returns the scope of one substack's task list
func SubstackScope(id string) Scope {
	return Scope{SubstackID: id}
}

// IsTopLevel reports whether the scope is the main stack
func (s Scope) IsTopLevel() bool {
	return s.SubstackID == ""
}

// Store holds the current task snapshot. It performs no I/O; the snapshot is
// only ever swapped wholesale, so readers never observe a half-applied edit.
type Store struct {
	mu    sync.RWMutex
	tasks []model.Task
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// ReplaceAll atomically swaps the entire snapshot
func (s *Store) ReplaceAll(tasks []model.Task) {
	cloned := Clone(tasks)
	s.mu.Lock()
	s.tasks = cloned
	s.mu.Unlock()
}

// Clear drops the snapshot (used when a load fails)
func (s *Store) Clear() {
	s.mu.Lock()
	s.tasks = nil
	s.mu.Unlock()
}

// Snapshot returns a copy of the full task list
func (s *Store) Snapshot() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.tasks)
}

// ActiveTasks returns the non-completed tasks of the scope, ascending by
// sort order.
func (s *Store) ActiveTasks(scope Scope) []model.Task {
	tasks := s.scopeTasks(scope)
	var active []model.Task
	for _, t := range tasks {
		if t.IsActive() {
			active = append(active, t)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].SortOrder < active[j].SortOrder
	})
	return active
}

// CompletedTasks returns the completed tasks of the scope, most recently
// completed first. Ties break on id so the order is deterministic.
func (s *Store) CompletedTasks(scope Scope) []model.Task {
	tasks := s.scopeTasks(scope)
	var done []model.Task
	for _, t := range tasks {
		if !t.IsActive() {
			done = append(done, t)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		ti, tj := done[i].CompletedAt, done[j].CompletedAt
		switch {
		case ti == nil && tj == nil:
			return done[i].ID < done[j].ID
		case ti == nil:
			return false
		case tj == nil:
			return true
		case ti.Equal(*tj):
			return done[i].ID < done[j].ID
		default:
			return ti.After(*tj)
		}
	})
	return done
}

// Find locates a task by id within the scope
func (s *Store) Find(scope Scope, id string) (model.Task, bool) {
	for _, t := range s.scopeTasks(scope) {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// scopeTasks resolves the scope to its (copied) task list
func (s *Store) scopeTasks(scope Scope) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if scope.IsTopLevel() {
		return Clone(s.tasks)
	}
	for i := range s.tasks {
		if sub := s.tasks[i].FindSubstack(scope.SubstackID); sub != nil {
			return Clone(sub.Tasks)
		}
	}
	return nil
}

// Clone deep-copies a task list so callers can never alias the snapshot
func Clone(tasks []model.Task) []model.Task {
	if tasks == nil {
		return nil
	}
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		if len(t.Substacks) > 0 {
			subs := make([]model.Substack, len(t.Substacks))
			for j, sub := range t.Substacks {
				sub.Tasks = append([]model.Task(nil), sub.Tasks...)
				subs[j] = sub
			}
			t.Substacks = subs
		}
		out[i] = t
	}
	return out
}

// NextSortOrder returns max active sort order + 1 for a task list
func NextSortOrder(tasks []model.Task) int {
	max := 0
	for _, t := range tasks {
		if t.IsActive() && t.SortOrder > max {
			max = t.SortOrder
		}
	}
	return max + 1
}

// The transforms below compute the next snapshot for local-only substack
// writes. They never mutate their input; the caller feeds the result to
// ReplaceAll.

// CompleteInSubstack marks one substack task done
func CompleteInSubstack(tasks []model.Task, substackID, taskID string, now time.Time) ([]model.Task, bool) {
	next := Clone(tasks)
	t := findSubstackTask(next, substackID, taskID)
	if t == nil {
		return nil, false
	}
	t.MarkDone(now)
	return next, true
}

// DeferInSubstack moves one substack task to the end of its active queue
func DeferInSubstack(tasks []model.Task, substackID, taskID string, now time.Time) ([]model.Task, bool) {
	next := Clone(tasks)
	sub := findSubstack(next, substackID)
	if sub == nil {
		return nil, false
	}
	t := findTaskIn(sub.Tasks, taskID)
	if t == nil {
		return nil, false
	}
	order := NextSortOrder(withoutTask(sub.Tasks, taskID))
	t.Defer(now, order)
	return next, true
}

// AppendToSubstack adds a task to the end of a substack's active queue
func AppendToSubstack(tasks []model.Task, substackID string, task model.Task) ([]model.Task, bool) {
	next := Clone(tasks)
	sub := findSubstack(next, substackID)
	if sub == nil {
		return nil, false
	}
	task.SortOrder = NextSortOrder(sub.Tasks)
	sub.Tasks = append(sub.Tasks, task)
	return next, true
}

func findSubstack(tasks []model.Task, substackID string) *model.Substack {
	for i := range tasks {
		if sub := tasks[i].FindSubstack(substackID); sub != nil {
			return sub
		}
	}
	return nil
}

func findSubstackTask(tasks []model.Task, substackID, taskID string) *model.Task {
	sub := findSubstack(tasks, substackID)
	if sub == nil {
		return nil
	}
	return findTaskIn(sub.Tasks, taskID)
}

func findTaskIn(tasks []model.Task, id string) *model.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

func withoutTask(tasks []model.Task, id string) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
