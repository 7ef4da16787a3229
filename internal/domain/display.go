package domain

import "time"

// DisplayOffset is the fixed-offset display time policy: scan timestamps are
// shifted by a constant duration and labeled with a zone abbreviation. It is
// intentionally not calendar-aware — daylight-saving transitions are ignored.
type DisplayOffset struct {
	Offset time.Duration
	Label  string
}

// Apply shifts a UTC instant by the fixed offset.
func (d DisplayOffset) Apply(t time.Time) time.Time {
	return t.UTC().Add(d.Offset)
}

// Format renders the shifted instant for frame annotation,
// e.g. "2024-04-26 13:13 CDT".
func (d DisplayOffset) Format(t time.Time) string {
	s := d.Apply(t).Format("2006-01-02 15:04")
	if d.Label == "" {
		return s
	}
	return s + " " + d.Label
}
