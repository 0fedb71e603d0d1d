package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/core/ports"
)

type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Submit handles POST /v1/projects/:id/reviews.
//
// @Summary      Review the other party of a project
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Project ID"
// @Param        body  body      submitReviewRequest  true  "Rating and comment"
// @Success      201   {object}  domain.Review
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/projects/{id}/reviews [post]
func (h *ReviewHandler) Submit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req submitReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	review, err := h.service.SubmitReview(c.Request().Context(), ports.SubmitReviewInput{
		ProjectID:    c.Param("id"),
		ReviewerID:   actor.ID,
		ReviewerRole: actor.Role,
		RevieweeID:   req.RevieweeID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, review)
}

// List handles GET /v1/projects/:id/reviews.
//
// @Summary      Reviews left on a project
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  listResponse[domain.Review]
// @Router       /v1/projects/{id}/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	reviews, err := h.service.ListForProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(reviews))
}
