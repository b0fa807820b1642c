package availability

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Key identifies one cached month. An empty ServiceID means venue-wide
// availability, used before a service has been chosen.
type Key struct {
	ServiceID string
	Year      int
	Month     time.Month
}

func KeyFor(serviceID string, d civil.Date) Key {
	return Key{ServiceID: serviceID, Year: d.Year, Month: d.Month}
}

func (k Key) Next() Key {
	return k.shift(1)
}

func (k Key) Prev() Key {
	return k.shift(-1)
}

func (k Key) shift(months int) Key {
	first := civil.Date{Year: k.Year, Month: k.Month, Day: 1}.In(time.UTC).AddDate(0, months, 0)
	return Key{ServiceID: k.ServiceID, Year: first.Year(), Month: first.Month()}
}

func (k Key) Contains(d civil.Date) bool {
	return d.Year == k.Year && d.Month == k.Month
}

func (k Key) FirstDay() civil.Date {
	return civil.Date{Year: k.Year, Month: k.Month, Day: 1}
}

// Days lists every calendar day of the month.
func (k Key) Days() []civil.Date {
	first := k.FirstDay()
	last := k.Next().FirstDay().AddDays(-1)
	days := make([]civil.Date, 0, last.Day)
	for d := first; !d.After(last); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Label renders the month for display, e.g. "December 2025".
func (k Key) Label() string {
	return fmt.Sprintf("%s %d", k.Month, k.Year)
}

func (k Key) String() string {
	svc := k.ServiceID
	if svc == "" {
		svc = "*"
	}
	return fmt.Sprintf("%s/%04d-%02d", svc, k.Year, int(k.Month))
}
