package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/catalog"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/middleware"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/wizard"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	today    = civil.Date{Year: 2025, Month: time.December, Day: 1}
	eventDay = civil.Date{Year: 2025, Month: time.December, Day: 12}
	booked   = civil.Date{Year: 2025, Month: time.December, Day: 5}
)

func fixedNow() time.Time {
	return time.Date(2025, time.December, 1, 10, 0, 0, 0, time.UTC)
}

func testServices() []models.Service {
	return []models.Service{
		{
			ID: "2", Name: "Bouncy House", BasePrice: decimal.NewFromInt(150),
			MinGuests: 2, MaxGuests: 20, MaxBookingsPerDay: 1,
			AddOns: []models.AddOn{
				{ID: "addon-bh-1", ServiceID: "2", Name: "Water Slide", Price: decimal.NewFromInt(50)},
				{ID: "addon-bh-2", ServiceID: "2", Name: "Generator", Price: decimal.NewFromInt(75)},
			},
		},
		{
			ID: "9", Name: "Magician", BasePrice: decimal.NewFromInt(100),
			MinGuests: 1, MaxGuests: 3, MaxBookingsPerDay: 1,
		},
	}
}

// fakeSource serves availability months and counts fetches.
type fakeSource struct {
	mu      sync.Mutex
	calls   int
	fetchFn func(serviceID string, year int, month time.Month) ([]models.AvailabilityRecord, error)
}

func (f *fakeSource) GetAvailability(ctx context.Context, serviceID string, year int, month time.Month) ([]models.AvailabilityRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fetchFn != nil {
		return f.fetchFn(serviceID, year, month)
	}
	if serviceID == "" && year == booked.Year && month == booked.Month {
		return []models.AvailabilityRecord{{Date: booked, IsAvailable: false}}, nil
	}
	return nil, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type mockGateway struct {
	mu       sync.Mutex
	createFn func(ctx context.Context, payload models.CreateBookingPayload) (models.BookingReceipt, error)
	payloads []models.CreateBookingPayload
}

func (m *mockGateway) CreateBooking(ctx context.Context, payload models.CreateBookingPayload) (models.BookingReceipt, error) {
	m.mu.Lock()
	m.payloads = append(m.payloads, payload)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, payload)
	}
	return models.BookingReceipt{ID: "booking-1"}, nil
}

type wizardFixture struct {
	e        *echo.Echo
	source   *fakeSource
	gateway  *mockGateway
	sessions *wizard.Manager
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()
	source := &fakeSource{}
	resolver := availability.NewResolver(source, nil)
	gw := &mockGateway{}
	sessions := wizard.NewManager(wizard.Dependencies{
		Catalog:  catalog.Preloaded(testServices()),
		Calendar: resolver,
		Months:   resolver,
		Gateway:  gw,
		Location: time.UTC,
		Now:      fixedNow,
	})

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	NewWizardHandler(sessions, resolver, nil).RegisterRoutes(e)
	return &wizardFixture{e: e, source: source, gateway: gw, sessions: sessions}
}

func (f *wizardFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

// sessionJSON is the subset of the session view the tests look at.
type sessionJSON struct {
	ID               string            `json:"id"`
	Step             string            `json:"step"`
	StepNumber       int               `json:"step_number"`
	SelectedDate     *string           `json:"selected_date"`
	GuestCount       int               `json:"guest_count"`
	AdditionalHours  int               `json:"additional_hours"`
	SelectedAddOnIDs []string          `json:"selected_add_on_ids"`
	Errors           map[string]string `json:"errors"`
	Pricing          struct {
		Total string `json:"total"`
	} `json:"pricing"`
	Booking *struct {
		BookingID string `json:"booking_id"`
	} `json:"booking"`
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionJSON {
	t.Helper()
	var v sessionJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type dateSelectionJSON struct {
	sessionJSON
	Selected bool `json:"selected"`
	Booked   bool `json:"booked"`
	Past     bool `json:"past"`
}

func decodeDateSelection(t *testing.T, rec *httptest.ResponseRecorder) dateSelectionJSON {
	t.Helper()
	var v dateSelectionJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (f *wizardFixture) start(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeSession(t, rec).ID
}

func (f *wizardFixture) toContactInfo(t *testing.T, id string) {
	t.Helper()
	base := "/api/v1/sessions/" + id
	steps := []struct{ method, path, body string }{
		{http.MethodPut, base + "/date", `{"date":"2025-12-12"}`},
		{http.MethodPost, base + "/next", ""},
		{http.MethodPut, base + "/service", `{"service_id":"2"}`},
		{http.MethodPost, base + "/next", ""},
		{http.MethodPost, base + "/addons/addon-bh-1/toggle", ""},
		{http.MethodPost, base + "/next", ""},
	}
	for _, s := range steps {
		rec := f.do(t, s.method, s.path, s.body)
		require.Equal(t, http.StatusOK, rec.Code, "%s %s: %s", s.method, s.path, rec.Body.String())
	}
}
