package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// DefaultWindowDays is the trailing span of days eligible for collection.
const DefaultWindowDays = 14

// CollectionWindow bounds collection to dates on or after Cutoff.
type CollectionWindow struct {
	Cutoff civil.Date
}

// NewCollectionWindow computes the window ending at now. Callers build it per run so a
// long-lived process never keeps a stale cutoff.
func NewCollectionWindow(now time.Time, days int) CollectionWindow {
	if days <= 0 {
		days = DefaultWindowDays
	}
	return CollectionWindow{Cutoff: civil.DateOf(now).AddDays(-days)}
}

// Contains reports whether d is on or after the cutoff.
func (w CollectionWindow) Contains(d civil.Date) bool {
	return !d.Before(w.Cutoff)
}
