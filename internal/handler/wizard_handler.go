package handler

import (
	"context"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionStore is satisfied by *wizard.Manager.
type SessionStore interface {
	Create() *wizard.Session
	Get(id string) (*wizard.Session, error)
	Abandon(id string) error
}

// MonthLoader is satisfied by *availability.Resolver.
type MonthLoader interface {
	Prefetch(ctx context.Context, keys ...availability.Key) error
	Calendar(key availability.Key, today civil.Date) []availability.DayStatus
}

type WizardHandler struct {
	sessions SessionStore
	months   MonthLoader
	logger   *zap.Logger
}

func NewWizardHandler(sessions SessionStore, months MonthLoader, logger *zap.Logger) *WizardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardHandler{sessions: sessions, months: months, logger: logger}
}

func (h *WizardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/sessions")
	g.POST("", h.CreateSession)
	g.GET("/:id", h.GetSession)
	g.DELETE("/:id", h.AbandonSession)

	g.PUT("/:id/date", h.SelectDate)
	g.PUT("/:id/service", h.SelectService)
	g.POST("/:id/guests/increment", h.IncrementGuests)
	g.POST("/:id/guests/decrement", h.DecrementGuests)
	g.PUT("/:id/guests", h.SetGuestCount)
	g.POST("/:id/hours/increment", h.IncrementHours)
	g.POST("/:id/hours/decrement", h.DecrementHours)
	g.PUT("/:id/hours", h.SetAdditionalHours)
	g.POST("/:id/addons/:addonId/toggle", h.ToggleAddOn)
	g.PUT("/:id/customer", h.UpdateCustomer)

	g.GET("/:id/calendar", h.ShowMonth)
	g.POST("/:id/calendar/next", h.NextMonth)
	g.POST("/:id/calendar/prev", h.PrevMonth)
	g.POST("/:id/calendar/reload", h.ReloadMonth)

	g.POST("/:id/next", h.Next)
	g.POST("/:id/back", h.Back)
	g.POST("/:id/reset", h.Reset)
	g.POST("/:id/submit", h.Submit)
}

func (h *WizardHandler) session(c echo.Context) (*wizard.Session, error) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return nil, httpError(err)
	}
	return s, nil
}

// mutate runs fn against the session and answers with the resulting view.
func (h *WizardHandler) mutate(c echo.Context, fn func(s *wizard.Session) error) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s.View())
}

func (h *WizardHandler) CreateSession(c echo.Context) error {
	s := h.sessions.Create()
	h.logger.Info("booking session started", zap.String("session_id", s.ID()))
	return c.JSON(http.StatusCreated, s.View())
}

func (h *WizardHandler) GetSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.View())
}

func (h *WizardHandler) AbandonSession(c echo.Context) error {
	if err := h.sessions.Abandon(c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// prefetch loads the venue month holding d and, when serviceID is set, the
// service's month, so booked-day checks never run against an unloaded month.
func (h *WizardHandler) prefetch(c echo.Context, sessionID, serviceID string, d civil.Date) {
	keys := []availability.Key{availability.KeyFor("", d)}
	if serviceID != "" {
		keys = append(keys, availability.KeyFor(serviceID, d))
	}
	if err := h.months.Prefetch(c.Request().Context(), keys...); err != nil {
		h.logger.Warn("availability unknown for selected date",
			zap.String("session_id", sessionID), zap.Stringer("date", d), zap.Error(err))
	}
}

// SelectDate answers 200 either way. A booked or past day is not an error;
// the response reports it and the session keeps its previous date.
func (h *WizardHandler) SelectDate(c echo.Context) error {
	var req dto.SelectDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := civil.ParseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	s, err := h.session(c)
	if err != nil {
		return err
	}
	serviceID := ""
	if v := s.View(); v.Service != nil {
		serviceID = v.Service.ID
	}
	h.prefetch(c, s.ID(), serviceID, d)

	selected, err := s.SelectDate(d)
	if err != nil {
		return httpError(err)
	}
	past := d.Before(s.Today())
	return c.JSON(http.StatusOK, dto.DateSelectionResponse{
		View:     s.View(),
		Selected: selected,
		Past:     past,
		Booked:   !selected && !past,
	})
}

func (h *WizardHandler) SelectService(c echo.Context) error {
	var req dto.SelectServiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ServiceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "service_id is required")
	}
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if v := s.View(); v.SelectedDate != nil {
		h.prefetch(c, s.ID(), req.ServiceID, *v.SelectedDate)
	}
	if err := s.SelectService(req.ServiceID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s.View())
}

func (h *WizardHandler) IncrementGuests(c echo.Context) error {
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.IncrementGuests()
		return err
	})
}

func (h *WizardHandler) DecrementGuests(c echo.Context) error {
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.DecrementGuests()
		return err
	})
}

func (h *WizardHandler) SetGuestCount(c echo.Context) error {
	n, err := bindCount(c)
	if err != nil {
		return err
	}
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.SetGuestCount(n)
		return err
	})
}

func (h *WizardHandler) IncrementHours(c echo.Context) error {
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.IncrementHours()
		return err
	})
}

func (h *WizardHandler) DecrementHours(c echo.Context) error {
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.DecrementHours()
		return err
	})
}

func (h *WizardHandler) SetAdditionalHours(c echo.Context) error {
	n, err := bindCount(c)
	if err != nil {
		return err
	}
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.SetAdditionalHours(n)
		return err
	})
}

func (h *WizardHandler) ToggleAddOn(c echo.Context) error {
	id := c.Param("addonId")
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.ToggleAddOn(id)
		return err
	})
}

func (h *WizardHandler) UpdateCustomer(c echo.Context) error {
	var req dto.CustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	switch {
	case req.Field != "":
		return h.mutate(c, func(s *wizard.Session) error {
			return s.SetCustomerField(req.Field, req.Value)
		})
	case req.Info != nil:
		return h.mutate(c, func(s *wizard.Session) error {
			return s.SetCustomerInfo(*req.Info)
		})
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "field or customer_info is required")
	}
}

func (h *WizardHandler) Next(c echo.Context) error {
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.Next(c.Request().Context())
		return err
	})
}

func (h *WizardHandler) Back(c echo.Context) error {
	return h.mutate(c, func(s *wizard.Session) error {
		_, err := s.Back()
		return err
	})
}

func (h *WizardHandler) Reset(c echo.Context) error {
	return h.mutate(c, func(s *wizard.Session) error {
		return s.Reset()
	})
}

func (h *WizardHandler) Submit(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	snap, err := s.Submit(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, snap)
}

// showMonth moves the session's calendar cursor and answers with the month
// it lands on. The cursor follows the session's chosen service.
func (h *WizardHandler) showMonth(c echo.Context, move func(nav *availability.Navigator, ctx context.Context) availability.MonthView) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	nav := s.Months()
	if nav == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "calendar is not available")
	}

	ctx := c.Request().Context()
	serviceID := ""
	if v := s.View(); v.Service != nil {
		serviceID = v.Service.ID
	}
	if nav.Focus().ServiceID != serviceID {
		nav.SetService(ctx, serviceID)
	}

	view := move(nav, ctx)
	if view.Stale {
		view = nav.Current()
	}
	return c.JSON(http.StatusOK, dto.ToAvailabilityResponse(view, h.months.Calendar(view.Key, s.Today())))
}

func (h *WizardHandler) ShowMonth(c echo.Context) error {
	return h.showMonth(c, func(nav *availability.Navigator, ctx context.Context) availability.MonthView {
		return nav.Show(ctx, nav.Focus())
	})
}

func (h *WizardHandler) NextMonth(c echo.Context) error {
	return h.showMonth(c, (*availability.Navigator).NextMonth)
}

func (h *WizardHandler) PrevMonth(c echo.Context) error {
	return h.showMonth(c, (*availability.Navigator).PrevMonth)
}

// ReloadMonth retries the focused month, e.g. after its banner was shown.
func (h *WizardHandler) ReloadMonth(c echo.Context) error {
	return h.showMonth(c, (*availability.Navigator).Reload)
}

func bindCount(c echo.Context) (int, error) {
	var req dto.CountRequest
	if err := c.Bind(&req); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Value == nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "value is required")
	}
	return *req.Value, nil
}
