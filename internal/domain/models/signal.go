package models

import "time"

// Signal is a target position weight for a symbol at a date.
// Weight.Float lies in [-1, 1]: 1 fully long, 0 flat, -1 fully short.
// An undefined weight means "no opinion" and is treated as flat-only
// (the simulator holds whatever it already has).
type Signal struct {
	Symbol string
	Date   time.Time
	Weight Value
}
