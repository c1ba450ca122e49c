package postgre

import (
	"context"
	"database/sql"
	"fmt"
)

// InitPostgresTaskSchema crea la tabla 'tasks' y sus índices si no existen.
// Los índices empiezan por organization_id porque todo acceso va acotado por organización.
func InitPostgresTaskSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
    CREATE TABLE IF NOT EXISTS tasks (
        id UUID PRIMARY KEY,
        organization_id TEXT NOT NULL,
        assignee_id UUID NOT NULL,
        title TEXT NOT NULL,
        description TEXT,
        status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'failed')),
        priority INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMP WITH TIME ZONE NOT NULL,
        updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
        due_at TIMESTAMP WITH TIME ZONE,
        completed_at TIMESTAMP WITH TIME ZONE,
        deleted_at TIMESTAMP WITH TIME ZONE
    )`)
	if err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}

	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_tasks_org_created ON tasks (organization_id, created_at DESC, id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_org_assignee ON tasks (organization_id, assignee_id)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tasks index: %w", err)
		}
	}
	return nil
}
