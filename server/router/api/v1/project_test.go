package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reyharighy/cba/internal/profile"
	"github.com/reyharighy/cba/store"
)

type fakeDriver struct {
	projects map[uuid.UUID]*store.Project
	turns    []*store.Turn
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{projects: make(map[uuid.UUID]*store.Project)}
}

func (d *fakeDriver) GetDB() *sql.DB                { return nil }
func (d *fakeDriver) Close() error                  { return nil }
func (d *fakeDriver) Migrate(context.Context) error { return nil }

func (d *fakeDriver) CreateProject(_ context.Context, create *store.Project) (*store.Project, error) {
	d.projects[create.ProjectID] = create
	return create, nil
}

func (d *fakeDriver) GetProject(_ context.Context, find *store.FindProject) (*store.Project, error) {
	return d.projects[find.ProjectID], nil
}

func (d *fakeDriver) CreateTurn(_ context.Context, create *store.Turn) (*store.Turn, error) {
	d.turns = append(d.turns, create)
	return create, nil
}

func (d *fakeDriver) GetTurn(context.Context, *store.FindTurn) (*store.Turn, error) {
	return nil, nil
}

func (d *fakeDriver) ListTurns(context.Context, *store.FindTurn) ([]*store.Turn, error) {
	return d.turns, nil
}

func (d *fakeDriver) UpsertTurnEmbedding(_ context.Context, upsert *store.TurnEmbedding) (*store.TurnEmbedding, error) {
	return upsert, nil
}

func (d *fakeDriver) SearchTurnEmbeddings(context.Context, *store.SearchTurnEmbedding) ([]*store.TurnEmbeddingHit, error) {
	return nil, nil
}

func newTestService(t *testing.T, driver *fakeDriver) *APIV1Service {
	t.Helper()

	datasetDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(datasetDir, "sales.csv"), []byte("a,b\n1,2\n"), 0o644))

	p := &profile.Profile{DatasetDir: datasetDir}
	return NewAPIV1Service(p, store.New(driver, p), nil)
}

func TestCreateProject(t *testing.T) {
	driver := newFakeDriver()
	s := newTestService(t, driver)

	body := `{"user_id":"` + uuid.New().String() + `","title":"sales analysis","dataset_file":"sales.csv"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, s.createProject(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp projectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sales analysis", resp.Title)
	assert.Equal(t, "sales.csv", resp.DatasetFile)
	assert.Len(t, driver.projects, 1)
}

func TestCreateProjectValidation(t *testing.T) {
	s := newTestService(t, newFakeDriver())

	tests := []struct {
		name string
		body string
	}{
		{"bad user id", `{"user_id":"nope","title":"t","dataset_file":"sales.csv"}`},
		{"missing title", `{"user_id":"` + uuid.New().String() + `","dataset_file":"sales.csv"}`},
		{"path traversal", `{"user_id":"` + uuid.New().String() + `","title":"t","dataset_file":"../etc/passwd"}`},
		{"absent dataset", `{"user_id":"` + uuid.New().String() + `","title":"t","dataset_file":"absent.csv"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := echo.New().NewContext(req, httptest.NewRecorder())

			err := s.createProject(c)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestService(t, newFakeDriver())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := s.getProject(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestListTurns(t *testing.T) {
	driver := newFakeDriver()
	driver.turns = []*store.Turn{
		{Seq: 1, Query: "q1", Response: "r1", Summary: "s1"},
		{Seq: 2, Query: "q2", Response: "r2", Summary: "s2"},
	}
	s := newTestService(t, driver)

	req := httptest.NewRequest(http.MethodGet, "/?user_id="+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, s.listTurns(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, int32(1), resp[0].Seq)
	assert.Equal(t, "q2", resp[1].Query)
}
