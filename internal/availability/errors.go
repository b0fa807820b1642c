package availability

import "fmt"

// FetchError is a recoverable failure to load one month. The month is shown
// with no booked dates and fetched again on the next request.
type FetchError struct {
	Key Key
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("availability %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Banner is the non-blocking message shown above the calendar.
func (e *FetchError) Banner() string {
	return fmt.Sprintf("We could not check availability for %s. Dates are shown as open until confirmed.", e.Key.Label())
}
