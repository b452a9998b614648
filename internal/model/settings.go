package model

import "time"

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vacation is the household-wide pause on health decay and streak penalties.
// Start and End are calendar dates; End is inclusive.
type Vacation struct {
	Active bool       `json:"active"`
	Start  *time.Time `json:"start_date"`
	End    *time.Time `json:"end_date"`
}

// ActiveAt reports whether the vacation is in effect at now. A vacation whose
// end date lies before now's calendar day has expired.
func (v Vacation) ActiveAt(now time.Time) bool {
	if !v.Active || v.Start == nil {
		return false
	}
	if v.Start.After(now) {
		return false
	}
	if v.End != nil {
		endOfDay := time.Date(v.End.Year(), v.End.Month(), v.End.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		if !now.Before(endOfDay) {
			return false
		}
	}
	return true
}

// Covers reports whether the calendar day containing day falls inside the
// vacation's start and end dates, regardless of whether it is still active.
func (v Vacation) Covers(day time.Time) bool {
	if v.Start == nil {
		return false
	}
	d := dateOf(day)
	if d.Before(dateOf(v.Start.In(day.Location()))) {
		return false
	}
	if v.End != nil && d.After(dateOf(v.End.In(day.Location()))) {
		return false
	}
	if v.End == nil && !v.Active {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
