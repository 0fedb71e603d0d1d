package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

// ProfileHandler serves profiles, the engineer directory and reviews about a profile.
type ProfileHandler struct {
	profiles ports.ProfileService
	reviews  ports.ReviewService
}

func NewProfileHandler(profiles ports.ProfileService, reviews ports.ReviewService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, reviews: reviews}
}

// Get handles GET /v1/profiles/:id.
//
// @Summary      Get a profile
// @Tags         profiles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/profiles/{id} [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	profile, err := h.profiles.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Update handles PATCH /v1/profiles/:id. Only the owner may update.
//
// @Summary      Update a profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Profile ID"
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/profiles/{id} [patch]
func (h *ProfileHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	profile, err := h.profiles.UpdateProfile(c.Request().Context(), actor.ID, c.Param("id"), toProfilePatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Engineers handles GET /v1/engineers.
//
// @Summary      Search engineers
// @Tags         profiles
// @Produce      json
// @Security     BearerAuth
// @Param        search          query     string  false  "Free text over name, specialty and company"
// @Param        specialty       query     string  false  "Exact specialty"
// @Param        min_rate        query     number  false  "Minimum hourly rate"
// @Param        max_rate        query     number  false  "Maximum hourly rate"
// @Param        min_experience  query     int     false  "Minimum years of experience"
// @Param        availability    query     string  false  "available, busy or unavailable"
// @Success      200             {object}  listResponse[profileResponse]
// @Failure      400             {object}  map[string]string
// @Router       /v1/engineers [get]
func (h *ProfileHandler) Engineers(c echo.Context) error {
	filter, err := parseEngineerFilter(c)
	if err != nil {
		return err
	}
	listings, err := h.profiles.SearchEngineers(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(toEngineerResponses(listings)))
}

// Reviews handles GET /v1/profiles/:id/reviews.
//
// @Summary      Reviews about a profile
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Profile ID"
// @Success      200  {object}  reviewListResponse
// @Router       /v1/profiles/{id}/reviews [get]
func (h *ProfileHandler) Reviews(c echo.Context) error {
	list, err := h.reviews.ListForReviewee(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReviewListResponse(list))
}

func parseEngineerFilter(c echo.Context) (domain.EngineerFilter, error) {
	f := domain.EngineerFilter{
		Search:       c.QueryParam("search"),
		Specialty:    c.QueryParam("specialty"),
		Availability: domain.Availability(c.QueryParam("availability")),
	}
	if f.Availability != "" && !f.Availability.Valid() {
		return f, echo.NewHTTPError(http.StatusBadRequest, "availability must be one of: available busy unavailable")
	}

	var err error
	if f.MinRate, err = floatQuery(c, "min_rate"); err != nil {
		return f, err
	}
	if f.MaxRate, err = floatQuery(c, "max_rate"); err != nil {
		return f, err
	}
	if raw := c.QueryParam("min_experience"); raw != "" {
		v, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "min_experience must be an integer")
		}
		f.MinExperience = &v
	}
	return f, nil
}

func floatQuery(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return &v, nil
}
