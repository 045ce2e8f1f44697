package timeutil

import (
	"math"
	"sync"
	"time"
)

// DefaultLocation is the business time zone used when none is configured.
const DefaultLocation = "America/Argentina/Buenos_Aires"

var (
	mu  sync.RWMutex
	loc *time.Location
)

func init() {
	loc = loadLocation(DefaultLocation)
}

func loadLocation(name string) *time.Location {
	l, err := time.LoadLocation(name)
	if err != nil {
		// Fallback: fixed UTC-3 when tzdata is not available
		return time.FixedZone("ART", -3*60*60)
	}
	return l
}

// SetLocation changes the business location used for day boundaries.
func SetLocation(name string) {
	if name == "" {
		return
	}
	l := loadLocation(name)
	mu.Lock()
	loc = l
	mu.Unlock()
}

// Location returns the current business location.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return loc
}

// Now returns the current time in the business location
func Now() time.Time {
	return time.Now().In(Location())
}

// ToLocal converts any time to the business location
func ToLocal(t time.Time) time.Time {
	return t.In(Location())
}

// ParseLocal parses a time string in the business location
func ParseLocal(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, Location())
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DayKey returns the YYYY-MM-DD key of t in the business location.
func DayKey(t time.Time) string {
	return t.In(Location()).Format(DateLayout)
}

// StartOfDay returns the start of day (00:00:00) in the business location for the given time
func StartOfDay(t time.Time) time.Time {
	l := t.In(Location())
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Location())
}

// EndOfDay returns the end of day (23:59:59) in the business location for the given time
func EndOfDay(t time.Time) time.Time {
	l := t.In(Location())
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 999999999, Location())
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	l := t.In(Location())
	return time.Date(l.Year(), l.Month(), 1, 0, 0, 0, 0, Location())
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24))
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02/01/2006"
)
