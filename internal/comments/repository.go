package comments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/store"
)

// Repository handles task comment persistence. Ownership resolves
// through task -> project -> organization inside each statement.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a comments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a comment under cm.TaskID. The INSERT selects from
// the task joined to its project guarded by the organization
// predicate; a task owned by another tenant inserts nothing and the
// caller sees store.ErrNotFound.
func (r *Repository) Create(ctx context.Context, orgID uuid.UUID, cm *models.TaskComment) error {
	const q = `INSERT INTO task_comments (task_id, content, author_email)
		SELECT t.id, $3, $4
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.id = $1 AND p.organization_id = $2
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, cm.TaskID, orgID, cm.Content, cm.AuthorEmail).
		Scan(&cm.ID, &cm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// ListByTask returns the task's comments, oldest first, iff the task
// belongs to the organization.
func (r *Repository) ListByTask(ctx context.Context, orgID, taskID uuid.UUID) ([]models.TaskComment, error) {
	const q = `SELECT c.id, c.task_id, c.content, c.author_email, c.created_at
		FROM task_comments c
		JOIN tasks t ON t.id = c.task_id
		JOIN projects p ON p.id = t.project_id
		WHERE c.task_id = $1 AND p.organization_id = $2
		ORDER BY c.created_at ASC`
	rows, err := r.pool.Query(ctx, q, taskID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TaskComment
	for rows.Next() {
		var cm models.TaskComment
		if err := rows.Scan(&cm.ID, &cm.TaskID, &cm.Content, &cm.AuthorEmail, &cm.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, cm)
	}
	return list, rows.Err()
}
