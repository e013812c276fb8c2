package lib

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

type CalendarEventInput struct {
	ID          uuid.UUID
	StartAt     time.Time
	EndAt       *time.Time
	Location    string
	Title       string
	Description string
	AlarmLead   time.Duration
}

// BuildCalendarEvent renders a single-event iCalendar file with a display
// alarm. Times are emitted as UTC instants; the calendar app localizes.
func BuildCalendarEvent(in *CalendarEventInput) string {
	start := in.StartAt.UTC()
	end := start.Add(time.Hour)
	if in.EndAt != nil {
		end = in.EndAt.UTC()
	}

	cal := ical.NewCalendar()
	cal.SetProductId("-//AppReserve//EN")
	cal.SetMethod(ical.MethodPublish)

	ev := cal.AddEvent(fmt.Sprintf("appreserve-%s@taxivanbarcelona", in.ID))
	ev.SetDtStampTime(time.Now().UTC())
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.SetSummary(in.Title)
	ev.SetDescription(in.Description)
	if in.Location != "" {
		ev.SetLocation(in.Location)
	}
	ev.SetStatus(ical.ObjectStatusConfirmed)

	alarm := ev.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger(fmt.Sprintf("-PT%dM", int(in.AlarmLead.Minutes())))
	alarm.SetProperty(ical.ComponentPropertyDescription, in.Description)

	return cal.Serialize()
}
