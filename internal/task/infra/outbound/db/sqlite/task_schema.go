package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitSQLiteTaskSchema crea la tabla 'tasks' para el modo local. Los timestamps
// se guardan como TEXT en formato canónico para que la comparación lexicográfica
// coincida con la temporal.
func InitSQLiteTaskSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            organization_id TEXT NOT NULL,
            assignee_id TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT,
            status TEXT NOT NULL,
            priority INTEGER NOT NULL DEFAULT 0,
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            due_at TEXT,
            completed_at TEXT,
            deleted_at TEXT
        );
        CREATE INDEX IF NOT EXISTS idx_tasks_org_created ON tasks (organization_id, created_at);
    `)
	if err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}
	return nil
}
