package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	bookings := e.Group("/api/v1/bookings")
	bookings.POST("", h.CreateBooking)
	bookings.GET("", h.ListBookings)
	bookings.GET("/:ref", h.GetBooking)
	bookings.POST("/:ref/cancel", h.CancelBooking)
}

// CreateBooking accepts a complete payload without going through a wizard
// session. It is validated the same way a session submission is.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req models.CreateBookingPayload
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ServiceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "service_id is required")
	}

	receipt, err := h.svc.CreateBooking(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ReceiptResponse{ID: receipt.ID})
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	booking, err := h.svc.CancelBooking(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	booking, err := h.svc.GetBooking(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	var status *models.BookingStatus
	if s := c.QueryParam("status"); s != "" {
		bs := models.BookingStatus(s)
		switch bs {
		case models.StatusPending, models.StatusConfirmed, models.StatusCancelled:
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		status = &bs
	}

	bookings, err := h.svc.ListBookings(c.Request().Context(), c.QueryParam("service_id"), status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}
