package engine

import "time"

// BirthRecord is the input of a LifeClock computation.
type BirthRecord struct {
	// BirthDate only contributes its calendar date; the time of day is ignored.
	BirthDate time.Time

	// LifeExpectancyYears is the assumed total lifespan. Range checks belong to the caller.
	LifeExpectancyYears int
}

// Countdown is a clamped duration split into days and the time of the remaining day.
type Countdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// Remaining is a clamped duration split into 365-day years, days and hours.
type Remaining struct {
	Years int64 `json:"years"`
	Days  int64 `json:"days"`
	Hours int64 `json:"hours"`
}

// Snapshot holds every quantity derived from a BirthRecord at one instant.
// Each elapsed field is a truncated total in its own unit, not a mixed-radix part.
type Snapshot struct {
	AgeYears int `json:"age_years"`

	ElapsedWeeks   int64 `json:"elapsed_weeks"`
	ElapsedMonths  int64 `json:"elapsed_months"`
	ElapsedDays    int64 `json:"elapsed_days"`
	ElapsedHours   int64 `json:"elapsed_hours"`
	ElapsedMinutes int64 `json:"elapsed_minutes"`
	ElapsedSeconds int64 `json:"elapsed_seconds"`

	// NextBirthday is the anniversary the countdown runs to, midnight in now's location.
	NextBirthday      time.Time `json:"next_birthday"`
	UntilNextBirthday Countdown `json:"until_next_birthday"`

	// EndOfLife is the birth date advanced by the life expectancy.
	EndOfLife          time.Time `json:"end_of_life"`
	Remaining          Remaining `json:"remaining"`
	RemainingDaysTotal int64     `json:"remaining_days_total"`
}
