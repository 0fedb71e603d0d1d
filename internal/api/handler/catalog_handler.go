package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/core/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// Get handles GET /v1/catalog.
//
// @Summary      Project categories and engineer specialties
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  catalog.Catalog
// @Router       /v1/catalog [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog)
}
