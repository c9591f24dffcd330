package engine

import "time"

// dayKey formats t as a local calendar day in loc.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// daysBefore returns noon of the calendar day n days before ref in loc.
// Noon keeps the result on the right day across DST shifts.
func daysBefore(ref time.Time, n int, loc *time.Location) time.Time {
	y, m, d := ref.In(loc).Date()
	return time.Date(y, m, d-n, 12, 0, 0, 0, loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func startOfMonth(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

// startOfWeek returns Sunday 00:00 of t's week in loc.
func startOfWeek(t time.Time, loc *time.Location) time.Time {
	day := startOfDay(t, loc)
	y, m, d := day.Date()
	return time.Date(y, m, d-int(day.Weekday()), 0, 0, 0, 0, loc)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
