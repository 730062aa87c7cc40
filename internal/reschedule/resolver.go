// Package reschedule moves an existing vendor booking to a new window.
// The dialog derives the window from one of three timing modes, refuses
// windows that clash with the vendor's other bookings and routes fees
// through the payment hand-off.
package reschedule

import (
	"errors"
	"strings"

	"github.com/iliyamo/event-booking-wizard/internal/model"
)

const (
	dayStart = "00:00"
	dayEnd   = "23:59"
)

var (
	ErrUnknownMode       = errors.New("unknown timing mode")
	ErrStartDateRequired = errors.New("start date is required")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEndBeforeStart    = errors.New("end date is before start date")
)

// Resolve turns a draft into a concrete window.
func Resolve(d model.BookingDraft) (model.Window, error) {
	if !d.TimingMode.Valid() {
		return model.Window{}, ErrUnknownMode
	}
	if strings.TrimSpace(d.StartDate) == "" {
		return model.Window{}, ErrStartDateRequired
	}
	start, ok := model.ParseDate(d.StartDate)
	if !ok {
		return model.Window{}, ErrInvalidDate
	}
	w := model.Window{
		DateStart: start.Format(model.DateLayout),
		EndDate:   start.Format(model.DateLayout),
		StartTime: dayStart,
		EndTime:   dayEnd,
	}

	switch d.TimingMode {
	case model.TimingHourly:
		w.StartTime, w.EndTime = ParseSlot(d.TimeSlot)
	case model.TimingMultiDay:
		if strings.TrimSpace(d.EndDate) != "" {
			end, ok := model.ParseDate(d.EndDate)
			if !ok {
				return model.Window{}, ErrInvalidDate
			}
			if end.Before(start) {
				return model.Window{}, ErrEndBeforeStart
			}
			w.EndDate = end.Format(model.DateLayout)
		}
	}
	return w, nil
}

// ParseSlot splits "HH:MM-HH:MM".  A side that does not parse falls back
// to the start or end of the day.
func ParseSlot(slot string) (start, end string) {
	start, end = dayStart, dayEnd
	a, b, found := strings.Cut(slot, "-")
	if s, ok := model.ParseClock(a); ok {
		start = s
	}
	if !found {
		return start, end
	}
	if e, ok := model.ParseClock(b); ok {
		end = e
	}
	return start, end
}
