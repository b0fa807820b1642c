// Package wizard holds the booking wizard: the step validator, the session
// state machine and the manager that owns sessions.
package wizard

import (
	"context"
	"slices"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/availability"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/pricing"
	"go.uber.org/zap"
)

const (
	DefaultGuestCount = 1
	fieldSubmit       = "submit"
)

// Dependencies are shared by every session of a Manager.
type Dependencies struct {
	Catalog  ServiceLookup
	Calendar Calendar
	Pricing  *pricing.Engine
	Gateway  BookingGateway
	// Months, when set, gives every session its own month cursor over the
	// shared cache.
	Months *availability.Resolver
	// Location decides which calendar day "today" is.
	Location          *time.Location
	Now               func() time.Time
	DefaultGuestCount int
	Logger            *zap.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Pricing == nil {
		d.Pricing = pricing.NewEngine()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.DefaultGuestCount <= 0 {
		d.DefaultGuestCount = DefaultGuestCount
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Session is one customer's booking in progress. All methods are safe for
// concurrent use; each mutation and the recomputation of price and errors
// happen under one lock.
type Session struct {
	id   string
	deps Dependencies
	nav  *availability.Navigator

	mu         sync.Mutex
	step       models.Step
	date       civil.Date
	service    *models.Service
	guestCount int
	hours      int
	addOnIDs   []string
	customer   models.CustomerInfo
	pricing    models.PriceBreakdown
	errors     map[string]string
	showErrors bool
	submitting bool
	booking    *models.BookingSnapshot
	createdAt  time.Time
	lastActive time.Time
}

func NewSession(id string, deps Dependencies) *Session {
	deps = deps.withDefaults()
	now := deps.Now()
	s := &Session{id: id, deps: deps, createdAt: now}
	s.init(now)
	if deps.Months != nil {
		s.nav = availability.NewNavigator(deps.Months, availability.KeyFor("", s.today()))
	}
	return s
}

func (s *Session) init(now time.Time) {
	s.step = models.StepDateSelection
	s.date = civil.Date{}
	s.service = nil
	s.guestCount = s.deps.DefaultGuestCount
	s.hours = 0
	s.addOnIDs = nil
	s.customer = models.CustomerInfo{}
	s.errors = map[string]string{}
	s.showErrors = false
	s.booking = nil
	s.lastActive = now
	s.recompute()
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Months is the session's calendar cursor, nil without a resolver.
func (s *Session) Months() *availability.Navigator {
	return s.nav
}

// Today is the current calendar day in the session's location.
func (s *Session) Today() civil.Date {
	return s.today()
}

func (s *Session) today() civil.Date {
	return civil.DateOf(s.deps.Now().In(s.deps.Location))
}

// guard refuses mutations on a completed or submitting session and outside
// the given steps.
func (s *Session) guard(steps ...models.Step) error {
	if s.step.Terminal() {
		return ErrSessionCompleted
	}
	if s.submitting {
		return ErrSubmissionInFlight
	}
	if len(steps) > 0 && !slices.Contains(steps, s.step) {
		return ErrWrongStep
	}
	s.lastActive = s.deps.Now()
	return nil
}

func (s *Session) state() State {
	return State{
		Date:            s.date,
		Service:         s.service,
		GuestCount:      s.guestCount,
		AdditionalHours: s.hours,
		Customer:        s.customer,
	}
}

// recompute refreshes every derived field. Callers hold s.mu.
func (s *Session) recompute() {
	if s.service != nil {
		s.pricing = s.deps.Pricing.Compute(*s.service, s.guestCount, s.hours, s.addOnIDs)
	} else {
		s.pricing = models.PriceBreakdown{}
	}
	if s.showErrors && !s.step.Terminal() {
		s.errors = Validate(s.state(), s.step, s.deps.Calendar, s.today()).Errors
	}
}

// SelectDate picks the event day. Booked and past days are ignored and
// reported as not selected.
func (s *Session) SelectDate(d civil.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(models.StepDateSelection); err != nil {
		return false, err
	}
	if !d.IsValid() || d.Before(s.today()) || dateBooked(s.deps.Calendar, s.service, d) {
		return false, nil
	}
	s.date = d
	s.recompute()
	return true, nil
}

// SelectService switches the chosen service. On the customization step the
// options start over from the new service's defaults; before that, they are
// only brought within the new service's bounds. A service that is booked on
// the selected date is refused and the current choice is kept.
func (s *Session) SelectService(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(models.StepServiceSelection, models.StepCustomization); err != nil {
		return err
	}
	svc, ok := s.deps.Catalog.GetByID(id)
	if !ok {
		return ErrServiceNotFound
	}
	if s.service != nil && s.service.ID == svc.ID {
		return nil
	}
	if (s.date != civil.Date{}) && dateBooked(s.deps.Calendar, &svc, s.date) {
		return ErrServiceBookedOnDate
	}

	if s.step == models.StepCustomization {
		s.guestCount = svc.MinGuests
		s.hours = 0
		s.addOnIDs = nil
	} else {
		s.guestCount = svc.ClampGuests(s.guestCount)
		s.hours = max(s.hours, 0)
		s.addOnIDs = slices.DeleteFunc(slices.Clone(s.addOnIDs), func(id string) bool {
			return !svc.HasAddOn(id)
		})
	}
	s.service = &svc
	s.recompute()
	return nil
}

// IncrementGuests adds one guest unless the service maximum is reached.
func (s *Session) IncrementGuests() (int, error) {
	return s.stepGuests(1)
}

// DecrementGuests removes one guest unless the service minimum is reached.
func (s *Session) DecrementGuests() (int, error) {
	return s.stepGuests(-1)
}

func (s *Session) stepGuests(delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customizing(); err != nil {
		return s.guestCount, err
	}
	next := s.guestCount + delta
	if next < s.service.MinGuests || next > s.service.MaxGuests {
		return s.guestCount, nil
	}
	s.guestCount = next
	s.recompute()
	return s.guestCount, nil
}

// SetGuestCount sets the guest count, clamped to the service bounds.
func (s *Session) SetGuestCount(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customizing(); err != nil {
		return s.guestCount, err
	}
	s.guestCount = s.service.ClampGuests(n)
	s.recompute()
	return s.guestCount, nil
}

func (s *Session) IncrementHours() (int, error) {
	return s.setHours(func(h int) int { return h + 1 })
}

// DecrementHours never goes below zero.
func (s *Session) DecrementHours() (int, error) {
	return s.setHours(func(h int) int { return h - 1 })
}

// SetAdditionalHours floors negative values at zero.
func (s *Session) SetAdditionalHours(n int) (int, error) {
	return s.setHours(func(int) int { return n })
}

func (s *Session) setHours(next func(int) int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customizing(); err != nil {
		return s.hours, err
	}
	s.hours = max(next(s.hours), 0)
	s.recompute()
	return s.hours, nil
}

// ToggleAddOn selects or deselects an add-on of the current service and
// reports whether it is selected afterwards.
func (s *Session) ToggleAddOn(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customizing(); err != nil {
		return false, err
	}
	if !s.service.HasAddOn(id) {
		return false, ErrUnknownAddOn
	}

	selected := true
	if i := slices.Index(s.addOnIDs, id); i >= 0 {
		s.addOnIDs = slices.Delete(slices.Clone(s.addOnIDs), i, i+1)
		selected = false
	} else {
		s.addOnIDs = append(slices.Clone(s.addOnIDs), id)
	}
	s.recompute()
	return selected, nil
}

func (s *Session) customizing() error {
	if err := s.guard(models.StepCustomization); err != nil {
		return err
	}
	if s.service == nil {
		return ErrWrongStep
	}
	return nil
}

func (s *Session) SetCustomerField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(models.StepContactInfo); err != nil {
		return err
	}
	if !s.customer.Set(field, value) {
		return ErrUnknownField
	}
	s.recompute()
	return nil
}

// SetCustomerInfo replaces all contact fields at once.
func (s *Session) SetCustomerInfo(info models.CustomerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(models.StepContactInfo); err != nil {
		return err
	}
	s.customer = info
	s.recompute()
	return nil
}

// Next moves to the following step once the current one validates. Leaving
// the contact step submits the booking.
func (s *Session) Next(ctx context.Context) (models.Step, error) {
	s.mu.Lock()
	if s.step == models.StepContactInfo && !s.submitting {
		s.mu.Unlock()
		if _, err := s.Submit(ctx); err != nil {
			return s.Step(), err
		}
		return s.Step(), nil
	}
	defer s.mu.Unlock()

	if err := s.guard(); err != nil {
		return s.step, err
	}
	if err := s.validateLocked(s.step); err != nil {
		return s.step, err
	}
	s.step++
	s.showErrors = false
	s.errors = map[string]string{}
	s.recompute()
	return s.step, nil
}

// validateLocked attaches errors for display when step does not validate.
func (s *Session) validateLocked(step models.Step) error {
	res := Validate(s.state(), step, s.deps.Calendar, s.today())
	if res.Valid {
		return nil
	}
	s.errors = res.Errors
	s.showErrors = true
	return &ValidationError{Step: step, Fields: copyErrors(res.Errors)}
}

// Back returns to the previous step. It never validates and never clears
// entered data. On the first step it does nothing.
func (s *Session) Back() (models.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return s.step, err
	}
	prev, ok := s.step.Previous()
	if !ok {
		return s.step, nil
	}
	s.step = prev
	s.showErrors = false
	s.errors = map[string]string{}
	s.recompute()
	return s.step, nil
}

// Reset abandons the current input and starts over.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	s.init(s.deps.Now())
	return nil
}

func (s *Session) Step() models.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submit sends the booking through the gateway. Only one submission may be
// in flight; the session cannot be changed until it returns. Every step is
// validated again first because availability may have changed meanwhile.
func (s *Session) Submit(ctx context.Context) (models.BookingSnapshot, error) {
	s.mu.Lock()
	if err := s.guard(models.StepContactInfo); err != nil {
		s.mu.Unlock()
		return models.BookingSnapshot{}, err
	}
	for step := models.StepDateSelection; step <= models.StepContactInfo; step++ {
		if err := s.validateLocked(step); err != nil {
			s.mu.Unlock()
			return models.BookingSnapshot{}, err
		}
	}

	payload := models.CreateBookingPayload{
		ServiceID:        s.service.ID,
		Date:             s.date,
		GuestCount:       s.guestCount,
		AdditionalHours:  s.hours,
		SelectedAddOnIDs: slices.Clone(s.addOnIDs),
		CustomerInfo:     s.customer,
	}
	delete(s.errors, fieldSubmit)
	s.submitting = true
	s.mu.Unlock()

	receipt, err := s.deps.Gateway.CreateBooking(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	s.lastActive = s.deps.Now()

	if err != nil {
		s.deps.Logger.Warn("booking submission failed", zap.String("session_id", s.id), zap.Error(err))
		s.errors = copyErrors(s.errors)
		s.errors[fieldSubmit] = "Failed to create booking. Please try again."
		return models.BookingSnapshot{}, &SubmissionError{Err: err}
	}

	snap := models.BookingSnapshot{
		BookingID:    receipt.ID,
		SelectedDate: s.date,
		Service:      s.service.Clone(),
		Options: models.BookingOptions{
			GuestCount:      s.guestCount,
			AdditionalHours: s.hours,
			AddOns:          pricing.SelectedAddOns(*s.service, s.addOnIDs),
		},
		CustomerInfo: s.customer,
		Pricing:      s.pricing,
		TotalPrice:   s.pricing.Total,
		SubmittedAt:  s.deps.Now(),
	}
	s.booking = &snap
	s.step = models.StepCompleted
	s.showErrors = false
	s.errors = map[string]string{}

	s.deps.Logger.Info("booking submitted",
		zap.String("session_id", s.id),
		zap.String("booking_id", receipt.ID),
		zap.String("total", models.FormatMoney(snap.TotalPrice)),
	)
	return snap, nil
}

func copyErrors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
