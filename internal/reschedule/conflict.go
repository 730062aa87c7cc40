package reschedule

import (
	"time"

	"github.com/iliyamo/event-booking-wizard/internal/model"
)

// IsDateBooked reports whether date falls within any booking.
func IsDateBooked(date time.Time, bookings []model.VendorBooking) bool {
	return IsDateRangeBooked(date, date, bookings)
}

// IsDateRangeBooked reports whether [start, end] overlaps any booking.
func IsDateRangeBooked(start, end time.Time, bookings []model.VendorBooking) bool {
	for _, b := range bookings {
		if !start.After(b.DateEnd) && !end.Before(b.DateStart) {
			return true
		}
	}
	return false
}

// Conflicts checks a resolved window against the vendor's bookings,
// ignoring excludeID and cancelled bookings.
func Conflicts(w model.Window, mode model.TimingMode, bookings []model.VendorBooking, excludeID uint64) bool {
	start, ok := model.ParseDate(w.DateStart)
	if !ok {
		return false
	}
	end, ok := model.ParseDate(w.EndDate)
	if !ok {
		end = start
	}
	active := make([]model.VendorBooking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID == excludeID || b.Status == model.BookingCancelled {
			continue
		}
		active = append(active, b)
	}

	switch mode {
	case model.TimingHourly:
		for _, b := range active {
			if IsDateBooked(start, []model.VendorBooking{b}) && timesOverlap(w.StartTime, w.EndTime, b.StartTime, b.EndTime) {
				return true
			}
		}
		return false
	case model.TimingMultiDay:
		return IsDateRangeBooked(start, end, active)
	default:
		return IsDateBooked(start, active)
	}
}

// timesOverlap compares two daily windows as half-open intervals.  A time
// that does not parse counts as overlapping.
func timesOverlap(s1, e1, s2, e2 string) bool {
	a1, ok1 := model.ClockMinutes(s1)
	b1, ok2 := model.ClockMinutes(e1)
	a2, ok3 := model.ClockMinutes(s2)
	b2, ok4 := model.ClockMinutes(e2)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return true
	}
	return a1 < b2 && a2 < b1
}
