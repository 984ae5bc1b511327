// Package clock abstracts the time source so scheduler jobs and services can
// be tested deterministically instead of sleeping against the wall clock.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock, in UTC.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time {
	return time.Now().UTC()
}
