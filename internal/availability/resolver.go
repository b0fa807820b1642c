// Package availability resolves which calendar days can still be booked.
//
// Months are fetched from a Source and cached per (service, year, month).
// Every fetch carries a monotonically increasing token; a completion is only
// applied when its token is still the latest one issued for that key.
package availability

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const prefetchLimit = 4

type Source interface {
	GetAvailability(ctx context.Context, serviceID string, year int, month time.Month) ([]models.AvailabilityRecord, error)
}

// MonthView is the outcome of a month request.
type MonthView struct {
	Key     Key                         `json:"-"`
	Records []models.AvailabilityRecord `json:"records"`
	Cached  bool                        `json:"cached"`
	// Stale is set when a newer request for the same key superseded this
	// one; its records were not applied.
	Stale bool `json:"stale"`
	// Err is a *FetchError when the month could not be loaded.
	Err error `json:"-"`
}

func (v MonthView) Banner() string {
	var fe *FetchError
	if errors.As(v.Err, &fe) {
		return fe.Banner()
	}
	return ""
}

type month struct {
	records []models.AvailabilityRecord
	booked  map[civil.Date]struct{}
	spots   map[civil.Date]int
}

func newMonth(key Key, records []models.AvailabilityRecord) *month {
	m := &month{
		booked: make(map[civil.Date]struct{}),
		spots:  make(map[civil.Date]int, len(records)),
	}
	for _, r := range records {
		if !key.Contains(r.Date) {
			continue
		}
		m.records = append(m.records, r)
		m.spots[r.Date] = r.SpotsRemaining
		if r.Booked() {
			m.booked[r.Date] = struct{}{}
		}
	}
	sort.Slice(m.records, func(i, j int) bool { return m.records[i].Date.Before(m.records[j].Date) })
	return m
}

type Resolver struct {
	source Source
	logger *zap.Logger

	mu     sync.Mutex
	months map[Key]*month
	tokens map[Key]uint64
	seq    uint64
}

func NewResolver(source Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source: source,
		logger: logger,
		months: make(map[Key]*month),
		tokens: make(map[Key]uint64),
	}
}

// Load returns the month, fetching it only when it is not cached yet.
func (r *Resolver) Load(ctx context.Context, key Key) MonthView {
	r.mu.Lock()
	if m, ok := r.months[key]; ok {
		r.mu.Unlock()
		return MonthView{Key: key, Records: cloneRecords(m.records), Cached: true}
	}
	token := r.issue(key)
	r.mu.Unlock()

	return r.fetch(ctx, key, token)
}

// Refresh fetches the month even when it is cached. Older fetches still in
// flight for the key are superseded.
func (r *Resolver) Refresh(ctx context.Context, key Key) MonthView {
	r.mu.Lock()
	token := r.issue(key)
	r.mu.Unlock()

	return r.fetch(ctx, key, token)
}

// Prefetch loads several months concurrently. Fetch failures are joined into
// the returned error; successfully loaded months stay cached either way.
func (r *Resolver) Prefetch(ctx context.Context, keys ...Key) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(prefetchLimit)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			if v := r.Load(ctx, key); v.Err != nil {
				mu.Lock()
				errs = append(errs, v.Err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Invalidate drops the cached month and supersedes fetches in flight.
func (r *Resolver) Invalidate(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.months, key)
	r.issue(key)
}

// InvalidateDate drops the service month and the venue-wide month holding d.
func (r *Resolver) InvalidateDate(serviceID string, d civil.Date) {
	r.Invalidate(KeyFor(serviceID, d))
	if serviceID != "" {
		r.Invalidate(KeyFor("", d))
	}
}

// IsBooked is an O(1) lookup. Months that were never loaded, or failed to
// load, report nothing as booked.
func (r *Resolver) IsBooked(serviceID string, d civil.Date) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.months[KeyFor(serviceID, d)]
	if !ok {
		return false
	}
	_, booked := m.booked[d]
	return booked
}

// Cached reports whether the month is in the cache.
func (r *Resolver) Cached(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.months[key]
	return ok
}

// DayStatus describes one calendar cell.
type DayStatus struct {
	Date       civil.Date `json:"date"`
	Booked     bool       `json:"booked"`
	Past       bool       `json:"past"`
	Selectable bool       `json:"selectable"`
	// SpotsRemaining is -1 when the month has no record for the day.
	SpotsRemaining int `json:"spots_remaining"`
}

func (r *Resolver) DayStatus(serviceID string, d, today civil.Date) DayStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dayStatusLocked(r.months[KeyFor(serviceID, d)], d, today)
}

// Calendar returns the status of every day of the month, from cache only.
func (r *Resolver) Calendar(key Key, today civil.Date) []DayStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.months[key]
	days := key.Days()
	out := make([]DayStatus, 0, len(days))
	for _, d := range days {
		out = append(out, r.dayStatusLocked(m, d, today))
	}
	return out
}

func (r *Resolver) dayStatusLocked(m *month, d, today civil.Date) DayStatus {
	st := DayStatus{Date: d, Past: d.Before(today), SpotsRemaining: -1}
	if m != nil {
		_, st.Booked = m.booked[d]
		if spots, ok := m.spots[d]; ok {
			st.SpotsRemaining = spots
		}
	}
	st.Selectable = !st.Booked && !st.Past
	return st
}

// issue hands out the next token for key. Callers hold r.mu.
func (r *Resolver) issue(key Key) uint64 {
	r.seq++
	r.tokens[key] = r.seq
	return r.seq
}

func (r *Resolver) fetch(ctx context.Context, key Key, token uint64) MonthView {
	records, err := r.source.GetAvailability(ctx, key.ServiceID, key.Year, key.Month)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokens[key] != token {
		r.logger.Debug("discarding stale availability result", zap.Stringer("month", key), zap.Uint64("token", token))
		return MonthView{Key: key, Records: cloneRecords(records), Stale: true, Err: fetchErr(key, err)}
	}
	if err != nil {
		r.logger.Warn("availability fetch failed", zap.Stringer("month", key), zap.Error(err))
		return MonthView{Key: key, Records: []models.AvailabilityRecord{}, Err: fetchErr(key, err)}
	}

	m := newMonth(key, records)
	r.months[key] = m
	return MonthView{Key: key, Records: cloneRecords(m.records)}
}

func fetchErr(key Key, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Key: key, Err: err}
}

func cloneRecords(in []models.AvailabilityRecord) []models.AvailabilityRecord {
	out := make([]models.AvailabilityRecord, len(in))
	copy(out, in)
	return out
}
