package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ServiceCatalog is satisfied by *catalog.Catalog.
type ServiceCatalog interface {
	List() []models.Service
	GetByID(id string) (models.Service, bool)
}

type CatalogHandler struct {
	catalog    ServiceCatalog
	hourlyRate decimal.Decimal
}

func NewCatalogHandler(catalog ServiceCatalog, hourlyRate decimal.Decimal) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, hourlyRate: hourlyRate}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	services := e.Group("/api/v1/services")
	services.GET("", h.ListServices)
	services.GET("/:id", h.GetService)
	services.GET("/:id/options", h.GetOptions)
}

func (h *CatalogHandler) ListServices(c echo.Context) error {
	services := h.catalog.List()
	if services == nil {
		services = []models.Service{}
	}
	return c.JSON(http.StatusOK, services)
}

func (h *CatalogHandler) GetService(c echo.Context) error {
	svc, ok := h.catalog.GetByID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) GetOptions(c echo.Context) error {
	svc, ok := h.catalog.GetByID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	return c.JSON(http.StatusOK, dto.ToServiceOptionsResponse(svc, models.FormatMoney(h.hourlyRate)))
}
