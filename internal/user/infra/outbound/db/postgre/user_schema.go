package postgre

import (
	"context"
	"database/sql"
	"fmt"
)

// InitPostgresUserSchema crea la tabla users si no existe.
func InitPostgresUserSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		organization_id TEXT NOT NULL,
		email TEXT NOT NULL,
		nombre TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'member')),
		birth_date TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		last_login_at TIMESTAMP WITH TIME ZONE,
		deleted_at TIMESTAMP WITH TIME ZONE,
		UNIQUE (organization_id, email)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_users_org_created ON users (organization_id, created_at DESC, id)`)
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	return nil
}
