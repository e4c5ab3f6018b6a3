// Package controller coordinates user intents with the backend gateway and
// the task store.
//
// Every successful write is followed by a full reload from the gateway; the
// store is only ever replaced wholesale, never patched. Concurrent writes are
// allowed and may race, but each reload carries a sequence number and a
// late-arriving stale snapshot is discarded rather than applied over a newer
// one.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/logger"
	"github.com/onejobco/onejob/internal/model"
	"github.com/onejobco/onejob/internal/store"
)

// State of the top-level list.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

// Render is the per-cycle view handed to the presentation layer.
type Render struct {
	Active    []model.Task
	Completed []model.Task
	Loading   bool
	Err       string
}

// Controller owns the load state machine and routes writes either to the
// gateway (top-level scope) or to local snapshot transforms (substack
// scopes, which have no remote backing in this version).
type Controller struct {
	gw    gateway.Gateway
	store *store.Store

	mu         sync.Mutex
	state      State
	errMsg     string
	loadSeq    uint64 // last sequence handed out
	appliedSeq uint64 // last sequence applied to the store

	changes chan struct{}
}

// New creates a controller around an injected gateway and store
func New(gw gateway.Gateway, st *store.Store) *Controller {
	return &Controller{
		gw:      gw,
		store:   st,
		state:   StateIdle,
		changes: make(chan struct{}, 1),
	}
}

// Changes signals whenever the visible state may have moved. Buffered so
// notification never blocks a write path.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// State returns the current load state of the top-level list
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Render derives the presentation view for a scope
func (c *Controller) Render(scope store.Scope) Render {
	c.mu.Lock()
	state, errMsg := c.state, c.errMsg
	c.mu.Unlock()

	return Render{
		Active:    c.store.ActiveTasks(scope),
		Completed: c.store.CompletedTasks(scope),
		Loading:   state == StateLoading,
		Err:       errMsg,
	}
}

// Refresh reloads the snapshot from the gateway. A failed load clears the
// visible list and leaves a persistent error until the next success.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.state = StateLoading
	c.mu.Unlock()
	c.notify()

	tasks, err := c.gw.ListTasks(ctx)

	// The swap happens under the same lock as the stamp check, so a result
	// that passes the check can never land after a newer one.
	c.mu.Lock()
	if seq <= c.appliedSeq {
		// A newer reload already landed; this result is stale.
		c.mu.Unlock()
		logger.Debug("Discarding stale reload", logger.F("seq", seq))
		return nil
	}
	c.appliedSeq = seq
	if err != nil {
		c.state = StateError
		c.errMsg = err.Error()
		c.store.Clear()
		c.mu.Unlock()
		c.notify()
		logger.Error("Reload failed", logger.F("error", err))
		return err
	}
	c.state = StateReady
	c.errMsg = ""
	c.store.ReplaceAll(tasks)
	c.mu.Unlock()
	c.notify()
	logger.Debug("Snapshot replaced", logger.F("seq", seq), logger.F("tasks", len(tasks)))
	return nil
}

// Complete marks a task done. Top-level tasks go through the gateway and
// trigger a full reload; substack tasks mutate only the local snapshot.
func (c *Controller) Complete(ctx context.Context, scope store.Scope, taskID string) error {
	if scope.IsTopLevel() {
		status := model.StatusDone
		if _, err := c.gw.UpdateTask(ctx, taskID, gateway.TaskUpdate{Status: &status}); err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		return c.Refresh(ctx)
	}

	next, ok := store.CompleteInSubstack(c.store.Snapshot(), scope.SubstackID, taskID, time.Now())
	if !ok {
		return fmt.Errorf("complete task %s: %w", taskID, gateway.ErrNotFound)
	}
	c.store.ReplaceAll(next)
	c.notify()
	return nil
}

// Reopen puts a completed top-level task back into todo. Substack tasks
// are not remote-backed and cannot be reopened.
func (c *Controller) Reopen(ctx context.Context, scope store.Scope, taskID string) error {
	if !scope.IsTopLevel() {
		return fmt.Errorf("reopen task: %w", gateway.ErrNotSupported)
	}
	status := model.StatusTodo
	if _, err := c.gw.UpdateTask(ctx, taskID, gateway.TaskUpdate{Status: &status}); err != nil {
		return fmt.Errorf("reopen task: %w", err)
	}
	return c.Refresh(ctx)
}

// Defer pushes a task to the end of its scope's active queue
func (c *Controller) Defer(ctx context.Context, scope store.Scope, taskID string) error {
	if scope.IsTopLevel() {
		if _, err := c.gw.UpdateTask(ctx, taskID, gateway.TaskUpdate{Deferral: true}); err != nil {
			return fmt.Errorf("defer task: %w", err)
		}
		return c.Refresh(ctx)
	}

	next, ok := store.DeferInSubstack(c.store.Snapshot(), scope.SubstackID, taskID, time.Now())
	if !ok {
		return fmt.Errorf("defer task %s: %w", taskID, gateway.ErrNotFound)
	}
	c.store.ReplaceAll(next)
	c.notify()
	return nil
}

// AddTask creates a task at the end of the scope's active queue
func (c *Controller) AddTask(ctx context.Context, scope store.Scope, title, description string) error {
	if scope.IsTopLevel() {
		if _, err := c.gw.CreateTask(ctx, title, description); err != nil {
			return fmt.Errorf("add task: %w", err)
		}
		return c.Refresh(ctx)
	}

	if title == "" {
		return fmt.Errorf("add task: %w: title must not be empty", gateway.ErrValidation)
	}
	task := model.NewTask(uuid.NewString(), title, description, 0)
	next, ok := store.AppendToSubstack(c.store.Snapshot(), scope.SubstackID, task)
	if !ok {
		return fmt.Errorf("add task: substack %s: %w", scope.SubstackID, gateway.ErrNotFound)
	}
	c.store.ReplaceAll(next)
	c.notify()
	return nil
}

// CreateSubstack creates a named substack under a top-level task. Nested
// substacks have no remote backing and are rejected.
func (c *Controller) CreateSubstack(ctx context.Context, scope store.Scope, taskID, name string) error {
	if !scope.IsTopLevel() {
		return fmt.Errorf("create substack: %w", gateway.ErrNotSupported)
	}
	if _, err := c.gw.CreateSubstack(ctx, taskID, name); err != nil {
		return fmt.Errorf("create substack: %w", err)
	}
	return c.Refresh(ctx)
}

// UpdateFields edits title and/or description without touching status or
// ordering. Only top-level tasks are remote-backed.
func (c *Controller) UpdateFields(ctx context.Context, scope store.Scope, taskID string, title, description *string) error {
	if !scope.IsTopLevel() {
		return fmt.Errorf("update task: %w", gateway.ErrNotSupported)
	}
	update := gateway.TaskUpdate{Title: title, Description: description}
	if _, err := c.gw.UpdateTask(ctx, taskID, update); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return c.Refresh(ctx)
}

// Remove deletes a top-level task
func (c *Controller) Remove(ctx context.Context, scope store.Scope, taskID string) error {
	if !scope.IsTopLevel() {
		return fmt.Errorf("delete task: %w", gateway.ErrNotSupported)
	}
	if err := c.gw.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return c.Refresh(ctx)
}

func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
