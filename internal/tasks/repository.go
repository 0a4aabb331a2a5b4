package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/store"
)

// Update carries the optional fields of a partial task update. Nil
// fields are left unchanged.
type Update struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	AssigneeEmail *string
	DueDate       *time.Time
}

// Repository handles task persistence. A task's tenant is its
// project's organization; every statement resolves that chain inside
// the statement itself (join or INSERT ... SELECT), never as a
// separate lookup.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tasks repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectCols = `SELECT t.id, t.project_id, t.title, t.description, t.status, t.assignee_email,
		t.due_date, t.created_at, t.updated_at
	FROM tasks t
	JOIN projects p ON p.id = t.project_id`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.AssigneeEmail,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByProject returns the project's tasks iff the project belongs
// to the organization; an unowned project yields no rows.
func (r *Repository) ListByProject(ctx context.Context, orgID, projectID uuid.UUID) ([]models.Task, error) {
	const q = selectCols + `
		WHERE t.project_id = $1 AND p.organization_id = $2
		ORDER BY t.created_at ASC`
	rows, err := r.pool.Query(ctx, q, projectID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// Get returns the task iff its project belongs to the organization.
func (r *Repository) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Task, error) {
	const q = selectCols + `
		WHERE t.id = $1 AND p.organization_id = $2`
	t, err := scanTask(r.pool.QueryRow(ctx, q, id, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a task under t.ProjectID. The INSERT selects from
// projects guarded by the organization predicate, so a project owned
// by another tenant inserts nothing and the caller sees
// store.ErrNotFound, exactly as if the project did not exist.
func (r *Repository) Create(ctx context.Context, orgID uuid.UUID, t *models.Task) error {
	const q = `INSERT INTO tasks (project_id, title, description, assignee_email, due_date)
		SELECT p.id, $3, $4, $5, $6
		FROM projects p
		WHERE p.id = $1 AND p.organization_id = $2
		RETURNING id, status, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, t.ProjectID, orgID, t.Title, t.Description, t.AssigneeEmail, t.DueDate).
		Scan(&t.ID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// ApplyUpdate updates the supplied fields in a single statement
// joined against the owning project; the RETURNING clause makes the
// read-back atomic with the mutation. Returns the updated task or
// store.ErrNotFound.
func (r *Repository) ApplyUpdate(ctx context.Context, orgID, id uuid.UUID, upd Update) (*models.Task, error) {
	const q = `UPDATE tasks t SET
			title = COALESCE($1, t.title),
			description = COALESCE($2, t.description),
			status = COALESCE($3, t.status),
			assignee_email = COALESCE($4, t.assignee_email),
			due_date = COALESCE($5, t.due_date),
			updated_at = NOW()
		FROM projects p
		WHERE p.id = t.project_id AND t.id = $6 AND p.organization_id = $7
		RETURNING t.id, t.project_id, t.title, t.description, t.status, t.assignee_email,
			t.due_date, t.created_at, t.updated_at`
	task, err := scanTask(r.pool.QueryRow(ctx, q,
		upd.Title, upd.Description, upd.Status, upd.AssigneeEmail, upd.DueDate, id, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task and its comments in one transaction.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const delComments = `DELETE FROM task_comments c
		USING tasks t, projects p
		WHERE c.task_id = t.id AND t.project_id = p.id
		  AND t.id = $1 AND p.organization_id = $2`
	if _, err := tx.Exec(ctx, delComments, id, orgID); err != nil {
		return err
	}
	const delTask = `DELETE FROM tasks t
		USING projects p
		WHERE p.id = t.project_id AND t.id = $1 AND p.organization_id = $2`
	ct, err := tx.Exec(ctx, delTask, id, orgID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return tx.Commit(ctx)
}
