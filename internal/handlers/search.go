package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/ivgrimm/shop_backend/internal/search"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing query"})
	}

	total, products, err := search.Search(c.Request().Context(), h.ES, h.Index, q)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
