package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	sharedBus "github.com/davicafu/scopequery/shared/platform/bus"
)

const insertAuditSQL = `INSERT INTO query_audit (id, principal_id, role, entity, operation, predicate, sort, page, page_limit, records, returned, outcome, duration_ms, occurred_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ClickHouseAuditLog guarda cada consulta auditada en una tabla analítica.
type ClickHouseAuditLog struct {
	db *sql.DB
}

// NewClickHouseAuditLog abre la conexión. No contacta con el servidor hasta Ping o el primer insert.
func NewClickHouseAuditLog(addr string, dbName string) *ClickHouseAuditLog {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})
	return &ClickHouseAuditLog{db: conn}
}

// Ping comprueba que ClickHouse responde.
func (l *ClickHouseAuditLog) Ping(ctx context.Context) error {
	if err := l.db.PingContext(ctx); err != nil {
		return fmt.Errorf("could not ping clickhouse: %w", err)
	}
	return nil
}

// NewClickHouseAuditLogFromDB reutiliza una conexión existente.
func NewClickHouseAuditLogFromDB(db *sql.DB) *ClickHouseAuditLog {
	return &ClickHouseAuditLog{db: db}
}

// DB expone la conexión para consultar el log con el mismo motor de consultas.
func (l *ClickHouseAuditLog) DB() *sql.DB { return l.db }

func (l *ClickHouseAuditLog) Publish(ctx context.Context, event interface{}) error {
	var evt QueryAudited
	switch e := event.(type) {
	case QueryAudited:
		evt = e
	case *QueryAudited:
		evt = *e
	default:
		return fmt.Errorf("clickhouse audit log: unsupported event %T", event)
	}

	_, err := l.db.ExecContext(ctx, insertAuditSQL,
		evt.ID.String(),
		evt.PrincipalID,
		evt.Role,
		evt.Entity,
		evt.Operation,
		evt.Predicate,
		evt.Sort,
		int32(evt.Page),
		int32(evt.Limit),
		evt.Records,
		int32(evt.Returned),
		evt.Outcome,
		evt.DurationMS,
		evt.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event %s: %w", evt.ID, err)
	}
	return nil
}

// InitSchema crea la tabla si no existe. Particionada por mes y ordenada por
// entidad y principal, que son los filtros habituales.
func (l *ClickHouseAuditLog) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS query_audit (
			id           UUID,
			principal_id String,
			role         String,
			entity       String,
			operation    String,
			predicate    String,
			sort         String,
			page         Int32,
			page_limit   Int32,
			records      Int64,
			returned     Int32,
			outcome      String,
			duration_ms  Int64,
			occurred_at  DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(occurred_at)
		ORDER BY (entity, principal_id, occurred_at);
	`
	_, err := l.db.ExecContext(ctx, query)
	return err
}

var _ sharedBus.EventPublisher = (*ClickHouseAuditLog)(nil)
