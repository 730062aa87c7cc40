package reschedule

import (
	"testing"
	"time"

	"github.com/iliyamo/event-booking-wizard/internal/model"
)

func day(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t
}

func booking(id uint64, from, to, start, end string) model.VendorBooking {
	return model.VendorBooking{
		ID: id, VendorID: 1, DateStart: day(from), DateEnd: day(to),
		StartTime: start, EndTime: end, Status: model.BookingConfirmed,
	}
}

func TestIsDateBooked(t *testing.T) {
	t.Parallel()

	bookings := []model.VendorBooking{booking(1, "2025-06-10", "2025-06-12", "00:00", "23:59")}
	cases := map[string]bool{
		"2025-06-09": false,
		"2025-06-10": true,
		"2025-06-11": true,
		"2025-06-12": true,
		"2025-06-13": false,
	}
	for d, want := range cases {
		if got := IsDateBooked(day(d), bookings); got != want {
			t.Fatalf("%s: expected %v, got %v", d, want, got)
		}
	}
	if !IsDateRangeBooked(day("2025-06-01"), day("2025-06-10"), bookings) {
		t.Fatalf("expected overlap on the boundary day")
	}
	if IsDateRangeBooked(day("2025-06-13"), day("2025-06-20"), bookings) {
		t.Fatalf("expected no overlap")
	}
}

func TestConflicts(t *testing.T) {
	t.Parallel()

	bookings := []model.VendorBooking{
		booking(1, "2025-06-10", "2025-06-10", "14:00", "16:00"),
		booking(2, "2025-06-20", "2025-06-22", "00:00", "23:59"),
		{ID: 3, DateStart: day("2025-06-15"), DateEnd: day("2025-06-15"), StartTime: "00:00", EndTime: "23:59", Status: model.BookingCancelled},
	}

	tests := []struct {
		name    string
		mode    model.TimingMode
		window  model.Window
		exclude uint64
		want    bool
	}{
		{"fullday on booked date", model.TimingFullDay, model.Window{DateStart: "2025-06-10", EndDate: "2025-06-10"}, 0, true},
		{"fullday on free date", model.TimingFullDay, model.Window{DateStart: "2025-06-11", EndDate: "2025-06-11"}, 0, false},
		{"hourly overlapping", model.TimingHourly, model.Window{DateStart: "2025-06-10", EndDate: "2025-06-10", StartTime: "15:00", EndTime: "17:00"}, 0, true},
		{"hourly adjacent", model.TimingHourly, model.Window{DateStart: "2025-06-10", EndDate: "2025-06-10", StartTime: "16:00", EndTime: "17:00"}, 0, false},
		{"hourly inside multi-day booking", model.TimingHourly, model.Window{DateStart: "2025-06-21", EndDate: "2025-06-21", StartTime: "09:00", EndTime: "10:00"}, 0, true},
		{"multiday overlapping", model.TimingMultiDay, model.Window{DateStart: "2025-06-18", EndDate: "2025-06-20"}, 0, true},
		{"multiday clear", model.TimingMultiDay, model.Window{DateStart: "2025-06-11", EndDate: "2025-06-19"}, 0, false},
		{"own booking excluded", model.TimingFullDay, model.Window{DateStart: "2025-06-10", EndDate: "2025-06-10"}, 1, false},
		{"cancelled ignored", model.TimingFullDay, model.Window{DateStart: "2025-06-15", EndDate: "2025-06-15"}, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Conflicts(tc.window, tc.mode, bookings, tc.exclude); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestConflicts_UpstreamTimeFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start, end string
		slotStart  string
		slotEnd    string
		want       bool
	}{
		{"single digit hour overlaps", "9:00", "10:00", "09:30", "10:30", true},
		{"seconds adjacent", "13:00:00", "14:00:00", "14:00", "15:00", false},
		{"seconds overlapping", "13:00:00", "14:30:00", "14:00", "15:00", true},
		{"unreadable existing time blocks", "soon", "14:00", "08:00", "09:00", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bookings := []model.VendorBooking{booking(1, "2025-06-10", "2025-06-10", tc.start, tc.end)}
			w := model.Window{DateStart: "2025-06-10", EndDate: "2025-06-10", StartTime: tc.slotStart, EndTime: tc.slotEnd}
			if got := Conflicts(w, model.TimingHourly, bookings, 0); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
