package domain

import "time"

// Window is a half-open time interval [Start, End) requested or held by a booking
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow создает окно бронирования
func NewWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// Duration returns the length of the window
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Minutes returns the length of the window in whole minutes
func (w Window) Minutes() int {
	return int(w.Duration().Minutes())
}

// IsValid returns true if the window is well-formed (end strictly after start)
func (w Window) IsValid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && w.End.After(w.Start)
}

// Overlaps reports whether two half-open intervals intersect.
// [s1,e1) and [s2,e2) overlap iff s1 < e2 && e1 > s2: a booking ending at
// 10:00 and one starting at 10:00 do NOT conflict.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// SameDay returns true if start and end fall on the same calendar day.
// Bookings never span midnight: fields close before the end of the day.
func (w Window) SameDay() bool {
	y1, m1, d1 := w.Start.Date()
	y2, m2, d2 := w.End.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Date returns the calendar day of the window start (time truncated)
func (w Window) Date() time.Time {
	return time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
}

// Shift returns the window moved forward by the given number of days
func (w Window) Shift(days int) Window {
	return Window{
		Start: w.Start.AddDate(0, 0, days),
		End:   w.End.AddDate(0, 0, days),
	}
}

// ShiftMonths returns the window moved forward by the given number of months
func (w Window) ShiftMonths(months int) Window {
	return Window{
		Start: w.Start.AddDate(0, months, 0),
		End:   w.End.AddDate(0, months, 0),
	}
}
