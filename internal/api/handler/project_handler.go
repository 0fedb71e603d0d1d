package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/api/metrics"
	"github.com/obralink/marketplace/internal/core/ports"
)

const defaultOpenProjectsLimit = 10

// ProjectHandler handles the client side of the project workflow and the
// open-project feed shown to engineers.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Create handles POST /v1/projects.
//
// @Summary      Post a new project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createProjectRequest  true   "Project details"
// @Success      201              {object}  projectResponse
// @Success      200              {object}  projectResponse  "Replayed Idempotency-Key"
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /v1/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	result, err := h.service.CreateProject(c.Request().Context(), toCreateProjectInput(req, actor.ID, idempotencyKey))
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		metrics.ProjectsCreatedTotal.WithLabelValues("replayed").Inc()
		return c.JSON(http.StatusOK, toProjectResponse(result.Project))
	}
	metrics.ProjectsCreatedTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, toProjectResponse(result.Project))
}

// Get handles GET /v1/projects/:id. The owner also receives the proposals.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectDetailResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetProject(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectDetailResponse(detail))
}

// Mine handles GET /v1/projects/mine.
//
// @Summary      Projects posted by the current client
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[projectResponse]
// @Router       /v1/projects/mine [get]
func (h *ProjectHandler) Mine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	projects, err := h.service.ListMyProjects(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(toProjectResponses(projects)))
}

// Open handles GET /v1/projects/open.
//
// @Summary      Open projects, newest first
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum rows (default 10)"
// @Success      200    {object}  listResponse[projectResponse]
// @Failure      400    {object}  map[string]string
// @Router       /v1/projects/open [get]
func (h *ProjectHandler) Open(c echo.Context) error {
	limit := defaultOpenProjectsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = v
	}
	projects, err := h.service.ListOpenProjects(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(toProjectResponses(projects)))
}

// Complete handles POST /v1/projects/:id/complete.
//
// @Summary      Mark an in-progress project as completed
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/projects/{id}/complete [post]
func (h *ProjectHandler) Complete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	project, err := h.service.CompleteProject(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(project))
}

// Cancel handles POST /v1/projects/:id/cancel.
//
// @Summary      Cancel a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  projectResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/projects/{id}/cancel [post]
func (h *ProjectHandler) Cancel(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	project, err := h.service.CancelProject(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(project))
}
