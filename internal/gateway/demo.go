package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onejobco/onejob/internal/logger"
	"github.com/onejobco/onejob/internal/model"
	"github.com/onejobco/onejob/internal/store"
	_ "modernc.org/sqlite"
)

// demoStorageKey is the fixed namespace key the whole snapshot lives under.
const demoStorageKey = "onejob/tasks"

// Demo is the offline gateway. It keeps the task snapshot as one JSON
// record in a local SQLite file, written through on every mutation, so
// state survives restarts without a server. Construct one per use site;
// there is deliberately no shared instance.
type Demo struct {
	db *sql.DB
	mu sync.Mutex
}

// DefaultDemoPath returns the default demo database path (~/.onejob/demo.db)
func DefaultDemoPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".onejob", "demo.db"), nil
}

// OpenDemo opens or creates the demo store. A fresh store starts with the
// seed data set.
func OpenDemo(path string) (*Demo, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create demo directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open demo store: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to demo store: %w", err)
	}

	if _, err := sqlDB.Exec(migrationCreateRecords); err != nil {
		return nil, fmt.Errorf("failed to migrate demo store: %w", err)
	}

	d := &Demo{db: sqlDB}
	if err := d.seedIfEmpty(); err != nil {
		return nil, err
	}
	return d, nil
}

const migrationCreateRecords = `
CREATE TABLE IF NOT EXISTS records (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Close closes the underlying database
func (d *Demo) Close() error {
	return d.db.Close()
}

func (d *Demo) seedIfEmpty() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.loadLocked()
	if errors.Is(err, sql.ErrNoRows) {
		logger.Info("Seeding demo store")
		return d.saveLocked(SeedTasks())
	}
	return err
}

// ListTasks returns the snapshot sorted the way the stack expects: active
// tasks first by sort order, completed tasks after by completion time
// descending.
func (d *Demo) ListTasks(ctx context.Context) ([]model.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tasks, err := d.loadLocked()
	if err != nil {
		return nil, err
	}
	sortStack(tasks)
	return tasks, nil
}

// CreateTask appends a new task to the end of the active queue
func (d *Demo) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tasks, err := d.loadLocked()
	if err != nil {
		return model.Task{}, err
	}

	task := model.NewTask(uuid.NewString(), title, description, store.NextSortOrder(tasks))
	task.Source = "Demo"
	task.Substacks = []model.Substack{}
	tasks = append(tasks, task)

	if err := d.saveLocked(tasks); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update with the same transition semantics
// as the remote server
func (d *Demo) UpdateTask(ctx context.Context, id string, update TaskUpdate) (model.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tasks, err := d.loadLocked()
	if err != nil {
		return model.Task{}, err
	}

	idx := -1
	for i := range tasks {
		if tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	task := &tasks[idx]

	ApplyUpdate(task, update, func() int {
		others := make([]model.Task, 0, len(tasks)-1)
		for _, t := range tasks {
			if t.ID != id {
				others = append(others, t)
			}
		}
		return store.NextSortOrder(others)
	})

	if err := d.saveLocked(tasks); err != nil {
		return model.Task{}, err
	}
	return *task, nil
}

// CreateSubstack creates an empty named substack under a task
func (d *Demo) CreateSubstack(ctx context.Context, taskID, name string) (model.Substack, error) {
	if strings.TrimSpace(name) == "" {
		return model.Substack{}, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tasks, err := d.loadLocked()
	if err != nil {
		return model.Substack{}, err
	}

	var parent *model.Task
	for i := range tasks {
		if tasks[i].ID == taskID {
			parent = &tasks[i]
			break
		}
	}
	if parent == nil {
		return model.Substack{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	for _, sub := range parent.Substacks {
		if sub.Name == name {
			return model.Substack{}, fmt.Errorf("%w: substack %q already exists", ErrValidation, name)
		}
	}

	sub := model.NewSubstack(uuid.NewString(), name)
	parent.Substacks = append(parent.Substacks, sub)

	if err := d.saveLocked(tasks); err != nil {
		return model.Substack{}, err
	}
	return sub, nil
}

// DeleteTask removes a task; deleting an absent id is a no-op
func (d *Demo) DeleteTask(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tasks, err := d.loadLocked()
	if err != nil {
		return err
	}

	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return d.saveLocked(kept)
}

// Reset restores the fixed seed data set
func (d *Demo) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveLocked(SeedTasks())
}

func (d *Demo) loadLocked() ([]model.Task, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM records WHERE key = ?`, demoStorageKey).Scan(&value)
	if err != nil {
		return nil, err
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(value), &tasks); err != nil {
		return nil, fmt.Errorf("corrupt demo record: %w", err)
	}
	return tasks, nil
}

func (d *Demo) saveLocked(tasks []model.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`
		INSERT INTO records (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		demoStorageKey, string(data))
	return err
}

// ApplyUpdate applies a partial update to a task in place. nextOrder is
// consulted only for a deferral and must yield the end-of-queue position
// among the other active tasks. Shared by the demo store and the server so
// both backends transition identically.
func ApplyUpdate(task *model.Task, update TaskUpdate, nextOrder func() int) {
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}

	if update.Deferral {
		task.Defer(time.Now(), nextOrder())
		return
	}

	if update.Status != nil && *update.Status != task.Status {
		switch *update.Status {
		case model.StatusDone:
			task.MarkDone(time.Now())
		case model.StatusTodo:
			task.MarkTodo()
		}
	}
}

// sortStack orders active tasks by sort order ahead of completed tasks by
// completion time, newest first
func sortStack(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if !a.Completed {
			return a.SortOrder < b.SortOrder
		}
		at, bt := time.Time{}, time.Time{}
		if a.CompletedAt != nil {
			at = *a.CompletedAt
		}
		if b.CompletedAt != nil {
			bt = *b.CompletedAt
		}
		return at.After(bt)
	})
}
