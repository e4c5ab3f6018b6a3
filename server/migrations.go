package server

import "fmt"

// migrate runs all database migrations
func (p *Postgres) migrate() error {
	migrations := []string{
		migrationCreateTasks,
		migrationCreateSubstacks,
	}

	for i, m := range migrations {
		if _, err := p.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateTasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'todo',
    created_at TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ,
    deferred_at TIMESTAMPTZ,
    deferral_count INTEGER NOT NULL DEFAULT 0,
    sort_order INTEGER NOT NULL DEFAULT 0,
    source TEXT NOT NULL DEFAULT '',
    external_id TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`

const migrationCreateSubstacks = `
CREATE TABLE IF NOT EXISTS substacks (
    id TEXT PRIMARY KEY,
    task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    UNIQUE (task_id, name)
);

CREATE INDEX IF NOT EXISTS idx_substacks_task ON substacks(task_id);
`
