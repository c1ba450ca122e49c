package domain

import (
	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Columnas de la tabla tasks que se proyectan en cada consulta.
var taskColumns = []string{
	"id", "organization_id", "assignee_id", "title", "description", "status",
	"priority", "created_at", "updated_at", "due_at", "completed_at",
}

// TaskSummary es la proyección pública de una tarea.
// description y due_at se emiten siempre (null si no hay valor); completed_at
// solo aparece cuando la tarea se ha completado.
type TaskSummary struct {
	ID          string                       `json:"id"`
	Title       string                       `json:"title"`
	Description sharedQuery.Nullable[string] `json:"description"`
	Status      TaskStatus                   `json:"status"`
	Priority    int64                        `json:"priority"`
	AssigneeID  string                       `json:"assignee_id"`
	CreatedAt   string                       `json:"created_at"`
	UpdatedAt   string                       `json:"updated_at"`
	DueAt       sharedQuery.Nullable[string] `json:"due_at"`
	CompletedAt *string                      `json:"completed_at,omitempty"`
}

// IsCompleted indica si la tarea ya terminó con éxito.
func (t TaskSummary) IsCompleted() bool {
	return t.Status == TaskCompleted
}

// TaskEntity describe cómo se consultan las tareas:
//   - admin ve todas las tareas de su organización.
//   - member solo ve las tareas de su organización asignadas a él.
func TaskEntity() sharedQuery.Entity[TaskSummary] {
	orgRule := sharedQuery.ScopeRule{Column: "organization_id", Attribute: sharedDomain.AttrOrganizationID}
	assigneeRule := sharedQuery.ScopeRule{Column: "assignee_id", Attribute: sharedDomain.AttrPrincipalID}

	return sharedQuery.Entity[TaskSummary]{
		Name:     "task",
		Source:   "tasks",
		IDColumn: "id",
		IDType:   sharedQuery.TypeUUID,
		Columns:  taskColumns,
		Fields: []sharedQuery.Field{
			{Name: "title", Column: "title", Match: sharedQuery.MatchContains, Type: sharedQuery.TypeString, CaseInsensitive: true},
			{Name: "description", Column: "description", Match: sharedQuery.MatchContains, Type: sharedQuery.TypeString, CaseInsensitive: true, Nullable: true},
			{Name: "status", Column: "status", Match: sharedQuery.MatchEquals, Type: sharedQuery.TypeString,
				Enum: []string{string(TaskPending), string(TaskCompleted), string(TaskFailed)}},
			{Name: "assignee_id", Column: "assignee_id", Match: sharedQuery.MatchEquals, Type: sharedQuery.TypeUUID},
			{Name: "priority", Column: "priority", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeInteger},
			{Name: "created_at", Column: "created_at", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeTimestamp},
			{Name: "due_at", Column: "due_at", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeTimestamp, Nullable: true},
			{Name: "completed_at", Column: "completed_at", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeTimestamp, Nullable: true},
		},
		Sorts: []sharedQuery.SortField{
			{Name: "created_at", Column: "created_at"},
			{Name: "updated_at", Column: "updated_at"},
			{Name: "due_at", Column: "due_at"},
			{Name: "title", Column: "title", Default: sharedQuery.Asc},
			{Name: "priority", Column: "priority"},
			{Name: "status", Column: "status", Default: sharedQuery.Asc},
		},
		DefaultSort: "created_at",
		Scope: sharedQuery.ScopePolicy{
			ByRole: map[string][]sharedQuery.ScopeRule{
				sharedDomain.RoleAdmin:  {orgRule},
				sharedDomain.RoleMember: {orgRule, assigneeRule},
			},
		},
		SoftDeleteColumn:    "deleted_at",
		IncludeDeletedRoles: []string{sharedDomain.RoleAdmin},
		Paging:              sharedQuery.PagePolicy{DefaultLimit: 20, MaxLimit: 100},
		Map:                 mapTaskSummary,
	}
}

func mapTaskSummary(row sharedQuery.Row) (TaskSummary, error) {
	r := sharedQuery.NewRowReader(row)
	t := TaskSummary{
		ID:          r.UUID("id"),
		Title:       r.String("title"),
		Description: r.NullableString("description"),
		Status:      TaskStatus(r.String("status")),
		Priority:    r.Int("priority"),
		AssigneeID:  r.UUID("assignee_id"),
		CreatedAt:   r.Timestamp("created_at"),
		UpdatedAt:   r.Timestamp("updated_at"),
		DueAt:       r.NullableTimestamp("due_at"),
		CompletedAt: r.OptionalTimestamp("completed_at"),
	}
	return t, r.Err()
}
