package model

// BookingDraft is the editable state of a reschedule dialog.  StartDate
// and EndDate use DateLayout; TimeSlot is an "HH:MM-HH:MM" string used
// only in hourly mode.
type BookingDraft struct {
    TimingMode TimingMode `json:"timing_mode"`
    StartDate  string     `json:"start_date"`
    EndDate    string     `json:"end_date,omitempty"`
    TimeSlot   string     `json:"time_slot,omitempty"`
    Reason     string     `json:"reason,omitempty"`
}

// Window is a resolved booking window in the field naming the booking
// endpoints expect.
type Window struct {
    DateStart string `json:"Date_start"`
    EndDate   string `json:"End_date"`
    StartTime string `json:"Start_time"`
    EndTime   string `json:"End_time"`
}
