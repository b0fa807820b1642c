package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/dto"
	"github.com/labstack/echo/v4"
)

// CalendarReader is satisfied by *availability.Resolver.
type CalendarReader interface {
	Load(ctx context.Context, key availability.Key) availability.MonthView
	Refresh(ctx context.Context, key availability.Key) availability.MonthView
	Calendar(key availability.Key, today civil.Date) []availability.DayStatus
	Cached(key availability.Key) bool
	Prefetch(ctx context.Context, keys ...availability.Key) error
}

type AvailabilityHandler struct {
	calendar CalendarReader
	today    func() civil.Date
}

func NewAvailabilityHandler(calendar CalendarReader, today func() civil.Date) *AvailabilityHandler {
	if today == nil {
		today = func() civil.Date { return civil.DateOf(time.Now()) }
	}
	return &AvailabilityHandler{calendar: calendar, today: today}
}

func (h *AvailabilityHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/availability", h.GetMonth)
}

// GetMonth answers with the month view and its day grid. A failed fetch is
// still a 200: the body carries the banner and the client retries with
// refresh=true. The neighbouring months are warmed for navigation.
func (h *AvailabilityHandler) GetMonth(c echo.Context) error {
	today := h.today()
	key := availability.KeyFor(c.QueryParam("service_id"), today)

	if s := c.QueryParam("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil || year < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		key.Year = year
	}
	if s := c.QueryParam("month"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil || month < 1 || month > 12 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
		}
		key.Month = time.Month(month)
	}

	ctx := c.Request().Context()
	var view availability.MonthView
	if refresh, _ := strconv.ParseBool(c.QueryParam("refresh")); refresh {
		view = h.calendar.Refresh(ctx, key)
	} else {
		view = h.calendar.Load(ctx, key)
	}
	view.Key = key

	var warm []availability.Key
	for _, k := range []availability.Key{key.Prev(), key.Next()} {
		if !h.calendar.Cached(k) {
			warm = append(warm, k)
		}
	}
	if len(warm) > 0 {
		// failures are logged by the resolver and retried on focus
		_ = h.calendar.Prefetch(ctx, warm...)
	}

	return c.JSON(http.StatusOK, dto.ToAvailabilityResponse(view, h.calendar.Calendar(key, today)))
}
