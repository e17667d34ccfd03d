package clock

import "time"

// Clock is the date source used for age and deadline checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock.
func System() Clock { return systemClock{} }

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Date is a convenience for building a UTC midnight instant.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today is the calendar day of c.Now() as a UTC midnight instant.
func Today(c Clock) time.Time {
	y, m, d := c.Now().Date()
	return Date(y, m, d)
}
