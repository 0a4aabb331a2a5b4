package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/store"
	"github.com/taskhive/backend/internal/tenant"
)

type fakeLookup struct {
	orgs map[string]*models.Organization
}

func (f *fakeLookup) GetBySlug(_ context.Context, slug string) (*models.Organization, error) {
	if org, ok := f.orgs[slug]; ok {
		return org, nil
	}
	return nil, store.ErrNotFound
}

// fakeStore keeps a project -> organization ownership map and
// resolves task tenancy through it, like the SQL joins do.
type fakeStore struct {
	projectOrg map[uuid.UUID]uuid.UUID
	tasks      map[uuid.UUID]*models.Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projectOrg: make(map[uuid.UUID]uuid.UUID),
		tasks:      make(map[uuid.UUID]*models.Task),
	}
}

func (f *fakeStore) owned(orgID uuid.UUID, t *models.Task) bool {
	return f.projectOrg[t.ProjectID] == orgID
}

func (f *fakeStore) ListByProject(_ context.Context, orgID, projectID uuid.UUID) ([]models.Task, error) {
	var list []models.Task
	if f.projectOrg[projectID] != orgID {
		return nil, nil
	}
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			list = append(list, *t)
		}
	}
	return list, nil
}

func (f *fakeStore) Get(_ context.Context, orgID, id uuid.UUID) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok || !f.owned(orgID, t) {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) Create(_ context.Context, orgID uuid.UUID, t *models.Task) error {
	if f.projectOrg[t.ProjectID] != orgID {
		return store.ErrNotFound
	}
	t.ID = uuid.New()
	t.Status = models.TaskTodo
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeStore) ApplyUpdate(_ context.Context, orgID, id uuid.UUID, upd Update) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok || !f.owned(orgID, t) {
		return nil, store.ErrNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.AssigneeEmail != nil {
		t.AssigneeEmail = *upd.AssigneeEmail
	}
	if upd.DueDate != nil {
		t.DueDate = upd.DueDate
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, orgID, id uuid.UUID) error {
	t, ok := f.tasks[id]
	if !ok || !f.owned(orgID, t) {
		return store.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

var (
	acme = &models.Organization{ID: uuid.New(), Name: "Acme", Slug: "acme"}
	beta = &models.Organization{ID: uuid.New(), Name: "Beta", Slug: "beta"}
)

func setup(fs *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(fs)
	r := gin.New()
	r.Use(tenant.Resolver(&fakeLookup{orgs: map[string]*models.Organization{"acme": acme, "beta": beta}}))
	r.GET("/projects/:id/tasks", h.ListByProject)
	r.POST("/projects/:id/tasks", h.Create)
	r.GET("/tasks/:id", h.Get)
	r.PATCH("/tasks/:id", h.Update)
	r.DELETE("/tasks/:id", h.Delete)
	return r
}

func do(r *gin.Engine, method, path, slug, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if slug != "" {
		req.Header.Set(tenant.HeaderSlug, slug)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func seedProject(fs *fakeStore, org *models.Organization) uuid.UUID {
	id := uuid.New()
	fs.projectOrg[id] = org.ID
	return id
}

func seedTask(fs *fakeStore, projectID uuid.UUID, title string) *models.Task {
	t := &models.Task{ID: uuid.New(), ProjectID: projectID, Title: title, Status: models.TaskTodo}
	fs.tasks[t.ID] = t
	return t
}

func TestCreateUnderOwnProject(t *testing.T) {
	fs := newFakeStore()
	projectID := seedProject(fs, acme)
	r := setup(fs)

	w, env := do(r, http.MethodPost, "/projects/"+projectID.String()+"/tasks", "acme",
		`{"title":"Fix bug","assignee_email":"dev@acme.test"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var task models.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, projectID, task.ProjectID)
	assert.Equal(t, models.TaskTodo, task.Status)
}

func TestCreateUnderForeignProjectIsNotFound(t *testing.T) {
	fs := newFakeStore()
	betaProject := seedProject(fs, beta)
	r := setup(fs)

	// Valid project id, wrong tenant: 404, never 403.
	w, _ := do(r, http.MethodPost, "/projects/"+betaProject.String()+"/tasks", "acme", `{"title":"Sneaky"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, fs.tasks)
}

func TestCreateUnboundTenantUnauthorized(t *testing.T) {
	fs := newFakeStore()
	projectID := seedProject(fs, acme)
	r := setup(fs)

	w, _ := do(r, http.MethodPost, "/projects/"+projectID.String()+"/tasks", "", `{"title":"Fix bug"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListTasksScopedThroughProject(t *testing.T) {
	fs := newFakeStore()
	acmeProject := seedProject(fs, acme)
	seedTask(fs, acmeProject, "Fix bug")
	r := setup(fs)

	w, env := do(r, http.MethodGet, "/projects/"+acmeProject.String()+"/tasks", "acme", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Task
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	// Same project id under the other tenant yields nothing.
	w, env = do(r, http.MethodGet, "/projects/"+acmeProject.String()+"/tasks", "beta", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(env.Data))

	// Unbound tenant yields nothing.
	w, env = do(r, http.MethodGet, "/projects/"+acmeProject.String()+"/tasks", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(env.Data))
}

func TestGetCrossTenantIsNotFound(t *testing.T) {
	fs := newFakeStore()
	task := seedTask(fs, seedProject(fs, beta), "Fix bug")
	r := setup(fs)

	w, _ := do(r, http.MethodGet, "/tasks/"+task.ID.String(), "acme", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPartialUpdateLeavesOmittedFields(t *testing.T) {
	fs := newFakeStore()
	task := seedTask(fs, seedProject(fs, acme), "Fix bug")
	task.AssigneeEmail = "dev@acme.test"
	r := setup(fs)

	w, env := do(r, http.MethodPatch, "/tasks/"+task.ID.String(), "acme", `{"status":"DONE"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Task
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Fix bug", got.Title)
	assert.Equal(t, "dev@acme.test", got.AssigneeEmail)
	assert.Equal(t, models.TaskDone, got.Status)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	fs := newFakeStore()
	task := seedTask(fs, seedProject(fs, acme), "Fix bug")
	r := setup(fs)

	w, _ := do(r, http.MethodPatch, "/tasks/"+task.ID.String(), "acme", `{"status":"DOING"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.TaskTodo, fs.tasks[task.ID].Status)
}

func TestDeleteScoped(t *testing.T) {
	fs := newFakeStore()
	task := seedTask(fs, seedProject(fs, acme), "Fix bug")
	r := setup(fs)

	w, _ := do(r, http.MethodDelete, "/tasks/"+task.ID.String(), "beta", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := do(r, http.MethodDelete, "/tasks/"+task.ID.String(), "acme", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, string(env.Data))
	assert.Empty(t, fs.tasks)
}
