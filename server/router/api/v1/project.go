package v1

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/reyharighy/cba/store"
)

type createProjectRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	DatasetFile string `json:"dataset_file"`
}

type projectResponse struct {
	ProjectID   string `json:"project_id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	DatasetFile string `json:"dataset_file"`
	CreatedTs   int64  `json:"created_ts"`
}

func toProjectResponse(p *store.Project) *projectResponse {
	return &projectResponse{
		ProjectID:   p.ProjectID.String(),
		UserID:      p.UserID.String(),
		Title:       p.Title,
		DatasetFile: p.DatasetFile,
		CreatedTs:   p.CreatedTs,
	}
}

func (s *APIV1Service) createProject(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	if req.Title == "" || req.DatasetFile == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and dataset_file are required")
	}
	// The dataset file name is joined to the dataset directory; reject
	// anything that could escape it.
	if strings.ContainsAny(req.DatasetFile, "/\\") {
		return echo.NewHTTPError(http.StatusBadRequest, "dataset_file must be a bare file name")
	}

	datasetDir := strings.TrimRight(s.Profile.DatasetDir, "/") + "/"
	if _, err := os.Stat(datasetDir + req.DatasetFile); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "dataset file not found")
	}

	now := time.Now().Unix()
	project, err := s.Store.CreateProject(c.Request().Context(), &store.Project{
		ProjectID:   uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		DatasetDir:  datasetDir,
		DatasetFile: req.DatasetFile,
		CreatedTs:   now,
		UpdatedTs:   now,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create project").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (s *APIV1Service) getProject(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid project id")
	}

	project, err := s.Store.GetProject(c.Request().Context(), &store.FindProject{ProjectID: projectID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get project").SetInternal(err)
	}
	if project == nil {
		return echo.NewHTTPError(http.StatusNotFound, "project not found")
	}

	return c.JSON(http.StatusOK, toProjectResponse(project))
}

type turnResponse struct {
	Seq       int32  `json:"seq"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	Summary   string `json:"summary"`
	CreatedTs int64  `json:"created_ts"`
}

func (s *APIV1Service) listTurns(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid project id")
	}
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}

	turns, err := s.Store.ListTurns(c.Request().Context(), &store.FindTurn{
		ProjectID: projectID,
		UserID:    userID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list turns").SetInternal(err)
	}

	response := make([]*turnResponse, len(turns))
	for i, turn := range turns {
		response[i] = &turnResponse{
			Seq:       turn.Seq,
			Query:     turn.Query,
			Response:  turn.Response,
			Summary:   turn.Summary,
			CreatedTs: turn.CreatedTs,
		}
	}

	return c.JSON(http.StatusOK, response)
}
