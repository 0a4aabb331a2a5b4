package projects

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

// Update carries the optional fields of a partial project update.
// Nil fields are left unchanged.
type Update struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	DueDate     *time.Time
}

// Repository handles project persistence. Every statement that
// touches an existing project carries the organization predicate in
// the statement itself, so there is no window where an unscoped row
// is read or written.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a projects repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// selectCols reads a project row with its computed task_count and
// completion_rate (done tasks / all tasks * 100; 0 when no tasks).
const selectCols = `SELECT p.id, p.organization_id, p.name, p.description, p.status, p.due_date,
		p.created_at, p.updated_at,
		COUNT(t.id)::int,
		COALESCE(COUNT(t.id) FILTER (WHERE t.status = $1) * 100.0 / NULLIF(COUNT(t.id), 0), 0)::float8
	FROM projects p
	LEFT JOIN tasks t ON t.project_id = p.id`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.Status, &p.DueDate,
		&p.CreatedAt, &p.UpdatedAt, &p.TaskCount, &p.CompletionRate)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the organization's projects, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]models.Project, error) {
	const q = selectCols + `
		WHERE p.organization_id = $2
		GROUP BY p.id
		ORDER BY p.created_at DESC`
	rows, err := r.pool.Query(ctx, q, models.TaskDone, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Get returns the project iff it belongs to the organization;
// store.ErrNotFound otherwise.
func (r *Repository) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Project, error) {
	const q = selectCols + `
		WHERE p.id = $2 AND p.organization_id = $3
		GROUP BY p.id`
	p, err := scanProject(r.pool.QueryRow(ctx, q, models.TaskDone, id, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a project owned by p.OrganizationID.
func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	const q = `INSERT INTO projects (organization_id, name, description, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.OrganizationID, p.Name, p.Description, p.DueDate).
		Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
}

// ApplyUpdate updates the supplied fields of the project. The
// ownership check, the mutation and the read-back (including the
// computed aggregates) happen in one statement, so a concurrent
// delete cannot turn a committed update into a missing row. Returns
// the updated project or store.ErrNotFound.
func (r *Repository) ApplyUpdate(ctx context.Context, orgID, id uuid.UUID, upd Update) (*models.Project, error) {
	const q = `WITH updated AS (
			UPDATE projects SET
				name = COALESCE($1, name),
				description = COALESCE($2, description),
				status = COALESCE($3, status),
				due_date = COALESCE($4, due_date),
				updated_at = NOW()
			WHERE id = $5 AND organization_id = $6
			RETURNING id, organization_id, name, description, status, due_date, created_at, updated_at
		)
		SELECT u.id, u.organization_id, u.name, u.description, u.status, u.due_date,
			u.created_at, u.updated_at,
			COUNT(t.id)::int,
			COALESCE(COUNT(t.id) FILTER (WHERE t.status = $7) * 100.0 / NULLIF(COUNT(t.id), 0), 0)::float8
		FROM updated u
		LEFT JOIN tasks t ON t.project_id = u.id
		GROUP BY u.id, u.organization_id, u.name, u.description, u.status, u.due_date,
			u.created_at, u.updated_at`
	p, err := scanProject(r.pool.QueryRow(ctx, q,
		upd.Name, upd.Description, upd.Status, upd.DueDate, id, orgID, models.TaskDone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project and cascades to its tasks and their
// comments. The cascade is explicit and transactional rather than
// delegated to the FK ON DELETE clauses, so the invariant holds on
// any backend. Returns store.ErrNotFound when the project does not
// exist or belongs to another organization.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const delComments = `DELETE FROM task_comments c
		USING tasks t, projects p
		WHERE c.task_id = t.id AND t.project_id = p.id
		  AND p.id = $1 AND p.organization_id = $2`
	if _, err := tx.Exec(ctx, delComments, id, orgID); err != nil {
		return err
	}
	const delTasks = `DELETE FROM tasks t
		USING projects p
		WHERE t.project_id = p.id AND p.id = $1 AND p.organization_id = $2`
	if _, err := tx.Exec(ctx, delTasks, id, orgID); err != nil {
		return err
	}
	const delProject = `DELETE FROM projects WHERE id = $1 AND organization_id = $2`
	ct, err := tx.Exec(ctx, delProject, id, orgID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return tx.Commit(ctx)
}
