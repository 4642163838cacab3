// Package gate implements the active-hours precondition that must hold
// before a pipeline run allocates any resource.
package gate

import "time"

// Window is a closed-open daily hour range in a fixed time zone:
// the start hour is active, the end hour is not.
type Window struct {
	StartHour int
	EndHour   int
	Loc       *time.Location
}

// IsActive reports whether now falls inside the window, evaluated in the
// window's zone regardless of the zone now carries.
func (w Window) IsActive(now time.Time) bool {
	h := now.In(w.Loc).Hour()
	return w.StartHour <= h && h < w.EndHour
}
