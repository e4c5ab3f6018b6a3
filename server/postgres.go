package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/model"
)

// Postgres is the durable storage backend for the task server. It
// implements the same contract as the client-side gateways so transition
// semantics stay identical across backends.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects and migrates
func OpenPostgres(dbURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

const taskColumns = `id, title, description, status, created_at, completed_at,
	deferred_at, deferral_count, sort_order, source, external_id`

// ListTasks returns active tasks by sort order followed by completed tasks
// newest first, each with its substacks attached.
func (p *Postgres) ListTasks(ctx context.Context) ([]model.Task, error) {
	active, err := p.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status <> 'done' ORDER BY sort_order ASC`)
	if err != nil {
		return nil, err
	}
	done, err := p.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status = 'done' ORDER BY completed_at DESC`)
	if err != nil {
		return nil, err
	}

	tasks := append(active, done...)
	if err := p.attachSubstacks(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask appends a task to the end of the active queue
func (p *Postgres) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, fmt.Errorf("%w: title must not be empty", gateway.ErrValidation)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, err
	}
	defer tx.Rollback()

	var order int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sort_order), 0) + 1 FROM tasks WHERE status <> 'done'`).Scan(&order)
	if err != nil {
		return model.Task{}, err
	}

	task := model.NewTask(uuid.NewString(), title, description, order)
	task.Substacks = []model.Substack{}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, created_at, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID, task.Title, task.Description, task.Status, task.CreatedAt, task.SortOrder)
	if err != nil {
		return model.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update with the shared transition semantics
func (p *Postgres) UpdateTask(ctx context.Context, id string, update gateway.TaskUpdate) (model.Task, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("task %s: %w", id, gateway.ErrNotFound)
	}
	if err != nil {
		return model.Task{}, err
	}

	var orderErr error
	gateway.ApplyUpdate(&task, update, func() int {
		var order int
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sort_order), 0) + 1 FROM tasks
			WHERE status <> 'done' AND id <> $1`, id).Scan(&order); err != nil {
			orderErr = err
			return 0
		}
		return order
	})
	if orderErr != nil {
		return model.Task{}, fmt.Errorf("next sort order: %w", orderErr)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET title = $2, description = $3, status = $4,
			completed_at = $5, deferred_at = $6, deferral_count = $7, sort_order = $8
		WHERE id = $1`,
		task.ID, task.Title, task.Description, task.Status,
		task.CompletedAt, task.DeferredAt, task.DeferralCount, task.SortOrder)
	if err != nil {
		return model.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}

	if err := p.attachSubstacks(ctx, []model.Task{task}); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// CreateSubstack creates an empty named substack under a task
func (p *Postgres) CreateSubstack(ctx context.Context, taskID, name string) (model.Substack, error) {
	if strings.TrimSpace(name) == "" {
		return model.Substack{}, fmt.Errorf("%w: name must not be empty", gateway.ErrValidation)
	}

	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, taskID).Scan(&exists)
	if err != nil {
		return model.Substack{}, err
	}
	if !exists {
		return model.Substack{}, fmt.Errorf("task %s: %w", taskID, gateway.ErrNotFound)
	}

	var taken bool
	err = p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM substacks WHERE task_id = $1 AND name = $2)`,
		taskID, name).Scan(&taken)
	if err != nil {
		return model.Substack{}, err
	}
	if taken {
		return model.Substack{}, fmt.Errorf("%w: substack %q already exists", gateway.ErrValidation, name)
	}

	sub := model.NewSubstack(uuid.NewString(), name)
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO substacks (id, task_id, name, created_at)
		VALUES ($1, $2, $3, $4)`,
		sub.ID, taskID, sub.Name, sub.CreatedAt)
	if err != nil {
		return model.Substack{}, err
	}
	return sub, nil
}

// DeleteTask removes a task and its substacks; unknown ids are a no-op
func (p *Postgres) DeleteTask(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (p *Postgres) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// attachSubstacks loads substack rows for the given tasks in one query.
// Substack task lists are always empty on the server; nested tasks are a
// client-local feature.
func (p *Postgres) attachSubstacks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byTask := make(map[string]int, len(tasks))
	ids := make([]string, len(tasks))
	for i := range tasks {
		byTask[tasks[i].ID] = i
		ids[i] = tasks[i].ID
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, task_id, name, created_at FROM substacks
		WHERE task_id = ANY($1) ORDER BY created_at ASC`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sub model.Substack
		var taskID string
		if err := rows.Scan(&sub.ID, &taskID, &sub.Name, &sub.CreatedAt); err != nil {
			return err
		}
		sub.Tasks = []model.Task{}
		if i, ok := byTask[taskID]; ok {
			tasks[i].Substacks = append(tasks[i].Substacks, sub)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	var completedAt, deferredAt sql.NullTime
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status,
		&task.CreatedAt, &completedAt, &deferredAt, &task.DeferralCount,
		&task.SortOrder, &task.Source, &task.ExternalID)
	if err != nil {
		return model.Task{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	if deferredAt.Valid {
		t := deferredAt.Time
		task.DeferredAt = &t
	}
	task.Completed = task.Status == model.StatusDone
	return task, nil
}
