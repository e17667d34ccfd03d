package validation

import "time"

// Age returns whole years between birth and on, comparing calendar dates
// only, so time zones and DST never shift the result by a day.
func Age(birth, on time.Time) int {
	by, bm, bd := birth.Date()
	oy, om, od := on.Date()
	age := oy - by
	if om < bm || (om == bm && od < bd) {
		age--
	}
	return age
}

// Minor reports whether someone born on birth is under 18 on the given date.
// An unknown birth date is not a minor.
func Minor(birth, on time.Time) bool {
	if birth.IsZero() {
		return false
	}
	return Age(birth, on) < 18
}
