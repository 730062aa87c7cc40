package model

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeBooking(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
		want VendorBooking
	}{
		{
			name: "camel case upstream",
			raw: map[string]any{
				"id": float64(4), "vendorId": float64(2), "dateFrom": "2025-06-10", "dateTo": "2025-06-12",
				"startTime": "09:00", "endTime": "17:00", "timingMode": "MultiDay", "rescheduleFeeCents": float64(1500),
			},
			want: VendorBooking{
				ID: 4, VendorID: 2, TimingMode: TimingMultiDay,
				DateStart: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), DateEnd: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
				StartTime: "09:00", EndTime: "17:00", Status: BookingConfirmed, RescheduleFeeCents: 1500,
			},
		},
		{
			name: "legacy capitalised fields",
			raw: map[string]any{
				"booking_id": "11", "vendor_id": "3", "Date_start": "2025-07-01T10:00:00Z",
				"Start_time": "10:00", "End_time": "11:00", "status": "cancelled",
			},
			want: VendorBooking{
				ID: 11, VendorID: 3,
				DateStart: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), DateEnd: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
				StartTime: "10:00", EndTime: "11:00", Status: BookingCancelled,
			},
		},
		{
			name: "non canonical times",
			raw: map[string]any{
				"id": float64(5), "dateFrom": "2025-06-10", "startTime": "9:00", "endTime": "13:00:00",
			},
			want: VendorBooking{
				ID:        5,
				DateStart: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), DateEnd: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				StartTime: "09:00", EndTime: "13:00", Status: BookingConfirmed,
			},
		},
		{
			name: "twelve hour clock",
			raw: map[string]any{
				"id": float64(6), "dateFrom": "2025-06-10", "startTime": "2:30 pm", "endTime": "4:00PM",
			},
			want: VendorBooking{
				ID:        6,
				DateStart: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), DateEnd: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				StartTime: "14:30", EndTime: "16:00", Status: BookingConfirmed,
			},
		},
		{
			name: "defaults for missing times",
			raw:  map[string]any{"id": float64(1), "date": "2025-08-01 00:00:00"},
			want: VendorBooking{
				ID:        1,
				DateStart: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), DateEnd: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
				StartTime: "00:00", EndTime: "23:59", Status: BookingConfirmed,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeBooking(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tc.want.ID || got.VendorID != tc.want.VendorID || got.TimingMode != tc.want.TimingMode ||
				!got.DateStart.Equal(tc.want.DateStart) || !got.DateEnd.Equal(tc.want.DateEnd) ||
				got.StartTime != tc.want.StartTime || got.EndTime != tc.want.EndTime ||
				got.Status != tc.want.Status || got.RescheduleFeeCents != tc.want.RescheduleFeeCents {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestNormalizeBooking_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeBooking(map[string]any{"id": float64(1)}); !errors.Is(err, ErrBookingShape) {
		t.Fatalf("expected ErrBookingShape, got %v", err)
	}
	if _, err := NormalizeBooking(map[string]any{"dateFrom": "2025-06-10", "dateTo": "2025-06-01"}); err == nil {
		t.Fatalf("expected error for inverted range")
	}

	for name, raw := range map[string]map[string]any{
		"start time":  {"dateFrom": "2025-06-10", "startTime": "morning"},
		"end time":    {"dateFrom": "2025-06-10", "endTime": "25:00"},
		"end date":    {"dateFrom": "2025-06-10", "dateTo": "next week"},
		"seconds off": {"dateFrom": "2025-06-10", "startTime": "10:61"},
	} {
		if _, err := NormalizeBooking(raw); !errors.Is(err, ErrBookingTime) {
			t.Errorf("%s: expected ErrBookingTime, got %v", name, err)
		}
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:00", "09:00", true},
		{"9:00", "09:00", true},
		{" 13:00:00 ", "13:00", true},
		{"12:15 am", "00:15", true},
		{"11:45PM", "23:45", true},
		{"", "", false},
		{"24:30", "", false},
		{"noon", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseClock(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseClock(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if m, ok := ClockMinutes("9:30"); !ok || m != 570 {
		t.Errorf("ClockMinutes(9:30) = %d, %v", m, ok)
	}
}

func TestDecodeBookings_KeepsGoodEntries(t *testing.T) {
	t.Parallel()

	data := []byte(`[{"id":1,"dateFrom":"2025-06-10"},{"id":2},{"id":3,"Date_start":"2025-06-11"}]`)
	got, err := DecodeBookings(data)
	if err == nil {
		t.Fatalf("expected an error for the malformed entry")
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected bookings %+v", got)
	}
}
