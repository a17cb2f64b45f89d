package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-lifeclock/internal/config"
)

// FeedGenerator renders a BirthRecord's milestones as an iCalendar document:
// the birthdays of the previous, current and next year, plus the estimated
// end of life.
type FeedGenerator struct {
	Clock Clock

	// FormatBirthday and FormatEndOfLife let the UI inject localized summaries.
	FormatBirthday  func(age int) string
	FormatEndOfLife func(lifetime int) string
}

// Generate builds the feed. Birthdays before birth or after the estimated end
// of life are left out.
func (g *FeedGenerator) Generate(ctx context.Context, rec BirthRecord) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := g.Clock.Now()
	loc := now.Location()
	birthYear := rec.BirthDate.Year()
	endYear := birthYear + rec.LifeExpectancyYears

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)

	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(now.UTC())

	for y := now.Year() - 1; y <= now.Year()+1; y++ {
		if y < birthYear || y > endYear {
			continue
		}
		age := y - birthYear
		date := Anniversary(rec.BirthDate, y, loc)
		event := newDayEvent(config.EventKindBirthday, rec.BirthDate, date, g.birthdaySummary(age), stamp)
		cal.Children = append(cal.Children, event.Component)
	}

	end := Anniversary(rec.BirthDate, endYear, loc)
	event := newDayEvent(config.EventKindEndOfLife, rec.BirthDate, end, g.endOfLifeSummary(rec.LifeExpectancyYears), stamp)
	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgFeedBuilt,
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyEvents, len(cal.Children),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}

// newDayEvent creates an all-day event. Its UID is a name-based UUID, so it
// stays stable across rebuilds for the same birth date and day.
func newDayEvent(kind string, birth, day time.Time, summary string, stamp *ical.Prop) *ical.Event {
	name := fmt.Sprintf(config.FormatUIDName, kind, FormatBirthday(birth), FormatBirthday(day))
	uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uid.String(), config.ICalDomain))
	event.Props.SetText(config.PropSummary, summary)
	event.Props.Set(stamp)

	start := ical.NewProp(config.PropDTStart)
	start.SetDate(day)
	event.Props.Set(start)
	return event
}

func (g *FeedGenerator) birthdaySummary(age int) string {
	if g.FormatBirthday != nil {
		return g.FormatBirthday(age)
	}
	if age == 0 {
		return config.FallbackBirth
	}
	return fmt.Sprintf(config.FallbackBirthday, age)
}

func (g *FeedGenerator) endOfLifeSummary(lifetime int) string {
	if g.FormatEndOfLife != nil {
		return g.FormatEndOfLife(lifetime)
	}
	return fmt.Sprintf(config.FallbackEndOfLife, lifetime)
}
