package sqlite

import (
	"context"
	"database/sql"

	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"
)

// InitSQLiteUserSchema crea la tabla users si no existe. Fechas en TEXT canónico.
func InitSQLiteUserSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            organization_id TEXT NOT NULL,
            email TEXT NOT NULL,
            nombre TEXT NOT NULL,
            role TEXT NOT NULL,
            birth_date TEXT NOT NULL,
            created_at TEXT NOT NULL,
            last_login_at TEXT,
            deleted_at TEXT,
            UNIQUE (organization_id, email)
        )
    `)
	return err
}
