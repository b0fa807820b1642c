package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession_Handler(t *testing.T) {
	f := newWizardFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/sessions", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	v := decodeSession(t, rec)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "date_selection", v.Step)
	assert.Equal(t, 1, v.StepNumber)
	assert.Nil(t, v.SelectedDate)
	assert.Equal(t, 1, f.sessions.Len())
}

func TestGetSession_Handler_NotFound(t *testing.T) {
	f := newWizardFixture(t)
	h := NewWizardHandler(f.sessions, nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.GetSession(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestSelectDate_Handler_Available(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)

	rec := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/date", `{"date":"2025-12-12"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeSession(t, rec)
	require.NotNil(t, v.SelectedDate)
	assert.Equal(t, "2025-12-12", *v.SelectedDate)
}

func TestSelectDate_Handler_LoadsMonthBeforeChecking(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)

	rec := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/date", `{"date":"2025-12-05"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.source.Calls())
	sel := decodeDateSelection(t, rec)
	assert.False(t, sel.Selected)
	assert.True(t, sel.Booked)
	assert.False(t, sel.Past)
	assert.Nil(t, sel.SelectedDate)

	v := decodeSession(t, f.do(t, http.MethodGet, "/api/v1/sessions/"+id, ""))
	assert.Nil(t, v.SelectedDate)
}

func TestSelectDate_Handler_BookedKeepsPreviousDate(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	base := "/api/v1/sessions/" + id
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/date", `{"date":"2025-12-12"}`).Code)

	sel := decodeDateSelection(t, f.do(t, http.MethodPut, base+"/date", `{"date":"2025-12-05"}`))

	assert.False(t, sel.Selected)
	require.NotNil(t, sel.SelectedDate)
	assert.Equal(t, "2025-12-12", *sel.SelectedDate)
}

func TestSelectDate_Handler_PastDate(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)

	rec := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/date", `{"date":"2025-11-30"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	sel := decodeDateSelection(t, rec)
	assert.False(t, sel.Selected)
	assert.True(t, sel.Past)
	assert.False(t, sel.Booked)
}

func TestSelectDate_Handler_InvalidDate(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)

	rec := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/date", `{"date":"12/12/2025"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.source.Calls())
}

func TestSelectDate_Handler_FetchFailureStillSelects(t *testing.T) {
	f := newWizardFixture(t)
	f.source.fetchFn = func(string, int, time.Month) ([]models.AvailabilityRecord, error) {
		return nil, errors.New("upstream down")
	}
	id := f.start(t)

	rec := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/date", `{"date":"2025-12-05"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNext_Handler_WithoutDate(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)

	rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/next", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Please select a date", resp.Errors["date"])
}

func TestGuests_Handler_WrongStep(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)

	rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/guests/increment", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCustomization_Handler(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	base := "/api/v1/sessions/" + id
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/date", `{"date":"2025-12-12"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/next", "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/service", `{"service_id":"2"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/next", "").Code)

	v := decodeSession(t, f.do(t, http.MethodPost, base+"/guests/increment", ""))
	assert.Equal(t, "customization", v.Step)
	assert.Equal(t, 3, v.GuestCount)

	v = decodeSession(t, f.do(t, http.MethodPut, base+"/guests", `{"value":99}`))
	assert.Equal(t, 20, v.GuestCount)

	v = decodeSession(t, f.do(t, http.MethodPost, base+"/hours/increment", ""))
	assert.Equal(t, 1, v.AdditionalHours)
	assert.Equal(t, "200.00", v.Pricing.Total)

	v = decodeSession(t, f.do(t, http.MethodPut, base+"/hours", `{"value":-4}`))
	assert.Equal(t, 0, v.AdditionalHours)

	v = decodeSession(t, f.do(t, http.MethodPost, base+"/addons/addon-bh-2/toggle", ""))
	assert.Equal(t, []string{"addon-bh-2"}, v.SelectedAddOnIDs)
	assert.Equal(t, "225.00", v.Pricing.Total)

	rec := f.do(t, http.MethodPost, base+"/addons/addon-vr-1/toggle", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, base+"/guests", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectService_Handler_Unknown(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	base := "/api/v1/sessions/" + id
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/date", `{"date":"2025-12-12"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/next", "").Code)

	rec := f.do(t, http.MethodPut, base+"/service", `{"service_id":"404"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, base+"/service", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectService_Handler_BookedOnSelectedDate(t *testing.T) {
	f := newWizardFixture(t)
	f.source.fetchFn = func(serviceID string, year int, month time.Month) ([]models.AvailabilityRecord, error) {
		if serviceID == "2" && year == eventDay.Year && month == eventDay.Month {
			return []models.AvailabilityRecord{{Date: eventDay, IsAvailable: false}}, nil
		}
		return nil, nil
	}
	id := f.start(t)
	base := "/api/v1/sessions/" + id
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/date", `{"date":"2025-12-12"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/next", "").Code)

	rec := f.do(t, http.MethodPut, base+"/service", `{"service_id":"2"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 2, f.source.Calls(), "venue and service month loaded before the check")
	v := decodeSession(t, f.do(t, http.MethodGet, base, ""))
	assert.Equal(t, "service_selection", v.Step)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/service", `{"service_id":"9"}`).Code)
	rec = f.do(t, http.MethodPost, base+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customization", decodeSession(t, rec).Step)
}

func TestCalendar_Handler_Navigation(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	base := "/api/v1/sessions/" + id + "/calendar"

	month := func(rec *httptest.ResponseRecorder) dto.AvailabilityResponse {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp dto.AvailabilityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	dec := month(f.do(t, http.MethodGet, base, ""))
	assert.Equal(t, 2025, dec.Year)
	assert.Equal(t, 12, dec.Month)
	assert.Empty(t, dec.ServiceID)
	assert.True(t, dec.Days[4].Booked)

	jan := month(f.do(t, http.MethodPost, base+"/next", ""))
	assert.Equal(t, 2026, jan.Year)
	assert.Equal(t, 1, jan.Month)

	back := month(f.do(t, http.MethodPost, base+"/prev", ""))
	assert.Equal(t, 12, back.Month)
	assert.True(t, back.Cached, "navigating back does not refetch")
	assert.Equal(t, 2, f.source.Calls())
}

func TestCalendar_Handler_FollowsServiceAndRetries(t *testing.T) {
	f := newWizardFixture(t)
	failing := true
	f.source.fetchFn = func(serviceID string, year int, month time.Month) ([]models.AvailabilityRecord, error) {
		if serviceID == "9" && failing {
			return nil, errors.New("timeout")
		}
		return nil, nil
	}
	id := f.start(t)
	base := "/api/v1/sessions/" + id
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/date", `{"date":"2025-12-12"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/next", "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/service", `{"service_id":"9"}`).Code)

	rec := f.do(t, http.MethodGet, base+"/calendar", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "9", resp.ServiceID)
	assert.NotEmpty(t, resp.Banner)

	failing = false
	rec = f.do(t, http.MethodPost, base+"/calendar/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Banner)
}

func TestCalendar_Handler_NotFound(t *testing.T) {
	f := newWizardFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/sessions/missing/calendar", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmit_Handler_Success(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	f.toContactInfo(t, id)
	base := "/api/v1/sessions/" + id

	rec := f.do(t, http.MethodPut, base+"/customer",
		`{"customer_info":{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone":"+1 (555) 123-4567"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/submit", "")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var snap struct {
		BookingID    string `json:"booking_id"`
		SelectedDate string `json:"selected_date"`
		TotalPrice   string `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "booking-1", snap.BookingID)
	assert.Equal(t, "2025-12-12", snap.SelectedDate)
	assert.Equal(t, "200", snap.TotalPrice)

	require.Len(t, f.gateway.payloads, 1)
	p := f.gateway.payloads[0]
	assert.Equal(t, "2", p.ServiceID)
	assert.Equal(t, eventDay, p.Date)
	assert.Equal(t, []string{"addon-bh-1"}, p.SelectedAddOnIDs)

	v := decodeSession(t, f.do(t, http.MethodGet, base, ""))
	assert.Equal(t, "completed", v.Step)
	require.NotNil(t, v.Booking)
	assert.Equal(t, "booking-1", v.Booking.BookingID)

	rec = f.do(t, http.MethodPost, base+"/back", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNext_Handler_ContactInfoSubmits(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	f.toContactInfo(t, id)
	base := "/api/v1/sessions/" + id

	for field, value := range map[string]string{
		models.FieldFirstName: "Ada",
		models.FieldLastName:  "Lovelace",
		models.FieldEmail:     "ada@example.com",
		models.FieldPhone:     "5551234567",
	} {
		body, _ := json.Marshal(dto.CustomerRequest{Field: field, Value: value})
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/customer", string(body)).Code)
	}

	v := decodeSession(t, f.do(t, http.MethodPost, base+"/next", ""))
	assert.Equal(t, "completed", v.Step)
}

func TestNext_Handler_InvalidContactInfo(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	f.toContactInfo(t, id)
	base := "/api/v1/sessions/" + id

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/customer", `{"field":"email","value":"not-an-email"}`).Code)

	rec := f.do(t, http.MethodPost, base+"/next", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Please enter a valid email address", resp.Errors[models.FieldEmail])
	assert.Contains(t, resp.Errors, models.FieldFirstName)
	assert.Empty(t, f.gateway.payloads)
}

func TestUpdateCustomer_Handler_BadRequests(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	f.toContactInfo(t, id)
	base := "/api/v1/sessions/" + id

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, base+"/customer", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, base+"/customer", `{"field":"nickname","value":"x"}`).Code)
}

func TestSubmit_Handler_GatewayFailure(t *testing.T) {
	f := newWizardFixture(t)
	f.gateway.createFn = func(ctx context.Context, payload models.CreateBookingPayload) (models.BookingReceipt, error) {
		return models.BookingReceipt{}, errors.New("connection refused")
	}
	id := f.start(t)
	f.toContactInfo(t, id)
	base := "/api/v1/sessions/" + id
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, base+"/customer",
		`{"customer_info":{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone":"5551234567"}}`).Code)

	rec := f.do(t, http.MethodPost, base+"/submit", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	v := decodeSession(t, f.do(t, http.MethodGet, base, ""))
	assert.Equal(t, "contact_info", v.Step)
	assert.NotEmpty(t, v.Errors["submit"])
}

func TestBackAndReset_Handler(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)
	f.toContactInfo(t, id)
	base := "/api/v1/sessions/" + id

	v := decodeSession(t, f.do(t, http.MethodPost, base+"/back", ""))
	assert.Equal(t, "customization", v.Step)
	assert.Equal(t, []string{"addon-bh-1"}, v.SelectedAddOnIDs)

	v = decodeSession(t, f.do(t, http.MethodPost, base+"/reset", ""))
	assert.Equal(t, "date_selection", v.Step)
	assert.Nil(t, v.SelectedDate)
	assert.Empty(t, v.SelectedAddOnIDs)
}

func TestAbandonSession_Handler(t *testing.T) {
	f := newWizardFixture(t)
	id := f.start(t)

	rec := f.do(t, http.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "session not found"))

	rec = f.do(t, http.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
