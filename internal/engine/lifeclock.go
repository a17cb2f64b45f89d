package engine

import (
	"time"

	"github.com/tartampluch/go-lifeclock/internal/config"
)

// Compute derives the Snapshot of rec at the instant now.
//
// Both instants are read as naive wall-clock values: the zone offset of now is
// dropped and DST transitions do not shift the result. The birth date counts
// from midnight.
//
// Compute is total. When now precedes the birth date, the age and every elapsed
// field are zero. Countdowns whose target has already passed are zero in every
// component.
func Compute(rec BirthRecord, now time.Time) Snapshot {
	loc := now.Location()
	wall := wallClock(now)

	by, bm, bd := rec.BirthDate.Date()
	birth := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := wall.Date()

	// Lexicographic (month, day) comparison: this year's anniversary is still ahead.
	beforeAnniversary := nm < bm || (nm == bm && nd < bd)

	var s Snapshot

	if !wall.Before(birth) {
		s.AgeYears = ny - by
		if beforeAnniversary {
			s.AgeYears--
		}

		months := int64(ny-by)*config.MonthsPerYear + int64(nm-bm)
		if nd < bd {
			months--
		}
		s.ElapsedMonths = months

		secs := secondsBetween(birth, wall)
		s.ElapsedSeconds = secs
		s.ElapsedMinutes = secs / config.SecondsPerMinute
		s.ElapsedHours = secs / config.SecondsPerHour
		s.ElapsedDays = secs / config.SecondsPerDay
		s.ElapsedWeeks = s.ElapsedDays / config.DaysPerWeek
	}

	nextYear := ny
	if !beforeAnniversary {
		nextYear++
	}
	next := anniversary(birth, nextYear)
	s.NextBirthday = inLocation(next, loc)
	s.UntilNextBirthday = splitCountdown(clamped(secondsBetween(wall, next)))

	end := anniversary(birth, by+rec.LifeExpectancyYears)
	s.EndOfLife = inLocation(end, loc)
	left := clamped(secondsBetween(wall, end))
	s.RemainingDaysTotal = left / config.SecondsPerDay
	s.Remaining = Remaining{
		Years: s.RemainingDaysTotal / config.DaysPerApproxYear,
		Days:  s.RemainingDaysTotal % config.DaysPerApproxYear,
		Hours: (left % config.SecondsPerDay) / config.SecondsPerHour,
	}

	return s
}

// Anniversary returns the occurrence of birth's month and day in year, at midnight
// in loc. A February 29 birth date falls on February 28 in non-leap years.
func Anniversary(birth time.Time, year int, loc *time.Location) time.Time {
	return inLocation(anniversary(birth, year), loc)
}

func anniversary(birth time.Time, year int) time.Time {
	_, m, d := birth.Date()
	if m == time.February && d == 29 && !isLeap(year) {
		d = 28
	}
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// wallClock re-anchors t's wall-clock reading in UTC, discarding its offset.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// inLocation maps a UTC wall-clock value back onto the same reading in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// secondsBetween returns ⌊to - from⌋ in whole seconds.
// It works on Unix seconds so spans beyond time.Duration's ~292 years stay exact.
func secondsBetween(from, to time.Time) int64 {
	d := to.Unix() - from.Unix()
	if to.Nanosecond() < from.Nanosecond() {
		d--
	}
	return d
}

func clamped(secs int64) int64 {
	return max(secs, 0)
}

func splitCountdown(secs int64) Countdown {
	rem := secs % config.SecondsPerDay
	return Countdown{
		Days:    secs / config.SecondsPerDay,
		Hours:   rem / config.SecondsPerHour,
		Minutes: (rem % config.SecondsPerHour) / config.SecondsPerMinute,
		Seconds: rem % config.SecondsPerMinute,
	}
}
