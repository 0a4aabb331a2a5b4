package projects

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskhive/backend/internal/comments"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/organizations"
	"github.com/taskhive/backend/internal/store"
	"github.com/taskhive/backend/internal/tasks"
	"github.com/taskhive/backend/pkg/database"
)

// Integration tests run against a real PostgreSQL when
// TEST_DATABASE_URL is set; otherwise they are skipped. They cover
// the pieces that live in SQL: the computed aggregates and the
// transactional cascade.

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

// createOrg makes an organization with a unique name so slug
// derivation never collides across test runs.
func createOrg(t *testing.T, pool *pgxpool.Pool, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name + " " + uuid.NewString(), ContactEmail: "ops@example.test"}
	require.NoError(t, organizations.NewRepository(pool).Create(context.Background(), org))
	return org
}

func createTask(t *testing.T, repo *tasks.Repository, orgID, projectID uuid.UUID, title string) *models.Task {
	t.Helper()
	task := &models.Task{ProjectID: projectID, Title: title}
	require.NoError(t, repo.Create(context.Background(), orgID, task))
	return task
}

func TestAggregatesTrackTasks(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	org := createOrg(t, pool, "Aggregates Co")
	repo := NewRepository(pool)
	taskRepo := tasks.NewRepository(pool)

	p := &models.Project{OrganizationID: org.ID, Name: "Launch"}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.Get(ctx, org.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TaskCount)
	assert.Zero(t, got.CompletionRate)

	first := createTask(t, taskRepo, org.ID, p.ID, "Fix bug")
	got, err = repo.Get(ctx, org.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TaskCount)
	assert.Zero(t, got.CompletionRate)

	createTask(t, taskRepo, org.ID, p.ID, "Write docs")
	done := models.TaskDone
	updated, err := taskRepo.ApplyUpdate(ctx, org.ID, first.ID, tasks.Update{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, updated.Status)
	assert.Equal(t, "Fix bug", updated.Title, "omitted fields survive the update")

	got, err = repo.Get(ctx, org.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TaskCount)
	assert.InDelta(t, 50.0, got.CompletionRate, 0.001)
	assert.GreaterOrEqual(t, got.CompletionRate, 0.0)
	assert.LessOrEqual(t, got.CompletionRate, 100.0)

	list, err := repo.List(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].TaskCount)
	assert.InDelta(t, 50.0, list[0].CompletionRate, 0.001)
}

func TestApplyUpdateReturnsRowWithAggregates(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	org := createOrg(t, pool, "Update Co")
	repo := NewRepository(pool)
	taskRepo := tasks.NewRepository(pool)

	p := &models.Project{OrganizationID: org.ID, Name: "Launch", Description: "d"}
	require.NoError(t, repo.Create(ctx, p))
	task := createTask(t, taskRepo, org.ID, p.ID, "Fix bug")
	done := models.TaskDone
	_, err := taskRepo.ApplyUpdate(ctx, org.ID, task.ID, tasks.Update{Status: &done})
	require.NoError(t, err)

	name := "Renamed"
	got, err := repo.ApplyUpdate(ctx, org.ID, p.ID, Update{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "d", got.Description)
	assert.Equal(t, 1, got.TaskCount)
	assert.InDelta(t, 100.0, got.CompletionRate, 0.001)

	// Same partial update under the wrong organization changes nothing.
	intruder := createOrg(t, pool, "Intruder Co")
	hijack := "Hijacked"
	_, err = repo.ApplyUpdate(ctx, intruder.ID, p.ID, Update{Name: &hijack})
	assert.True(t, errors.Is(err, store.ErrNotFound))
	got, err = repo.Get(ctx, org.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestDeleteCascadesToTasksAndComments(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	org := createOrg(t, pool, "Cascade Co")
	intruder := createOrg(t, pool, "Bystander Co")
	repo := NewRepository(pool)
	taskRepo := tasks.NewRepository(pool)
	commentRepo := comments.NewRepository(pool)

	p := &models.Project{OrganizationID: org.ID, Name: "Doomed"}
	require.NoError(t, repo.Create(ctx, p))
	first := createTask(t, taskRepo, org.ID, p.ID, "Fix bug")
	second := createTask(t, taskRepo, org.ID, p.ID, "Write docs")
	for _, taskID := range []uuid.UUID{first.ID, second.ID} {
		cm := &models.TaskComment{TaskID: taskID, Content: "note", AuthorEmail: "dev@example.test"}
		require.NoError(t, commentRepo.Create(ctx, org.ID, cm))
	}

	// Another tenant cannot delete it, and nothing is removed.
	err := repo.Delete(ctx, intruder.ID, p.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = $1`, p.ID).Scan(&n))
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Delete(ctx, org.ID, p.ID))

	_, err = repo.Get(ctx, org.ID, p.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = taskRepo.Get(ctx, org.ID, first.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = $1`, p.ID).Scan(&n))
	assert.Equal(t, 0, n)
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM task_comments WHERE task_id = ANY($1)`,
		[]uuid.UUID{first.ID, second.ID}).Scan(&n))
	assert.Equal(t, 0, n)
}
