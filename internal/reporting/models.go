package reporting

import "callboard/internal/timewindow"

// Summary is the board's stat-card payload: aggregated counts over one
// resolved window.
type Summary struct {
	Window timewindow.Window `json:"window"`

	Calls        CallStats        `json:"calls"`
	Contacts     ContactStats     `json:"contacts"`
	Appointments AppointmentStats `json:"appointments"`
}

type CallStats struct {
	Total         int `json:"total"`
	NeedsFollowup int `json:"needs_followup"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`
}

type ContactStats struct {
	Total          int `json:"total"`
	NeedsAttention int `json:"needs_attention"`
	Booked         int `json:"booked"`
}

type AppointmentStats struct {
	Total     int `json:"total"`
	Booked    int `json:"booked"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}
