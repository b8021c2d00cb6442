package models

import "time"

// ClientTimeLayout always renders a numeric offset, so UTC comes out as
// +00:00 rather than Z.
const ClientTimeLayout = "2006-01-02T15:04:05-07:00"

// ClientDateLayout is the client_date query format.
const ClientDateLayout = "2006-01-02"

// FormatClientTime renders t in loc as ISO-8601 with an explicit offset.
func FormatClientTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(ClientTimeLayout)
}

// FormatClientDate renders the calendar date of t in loc.
func FormatClientDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(ClientDateLayout)
}
