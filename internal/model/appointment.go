package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "PENDING"
	AppointmentStatusAccepted    AppointmentStatus = "ACCEPTED"
	AppointmentStatusRejected    AppointmentStatus = "REJECTED"
	AppointmentStatusRescheduled AppointmentStatus = "RESCHEDULED"
)

// Active reports whether the appointment counts toward the doctor's daily
// cap and conflict checks.
func (s AppointmentStatus) Active() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusAccepted
}

// ActiveStatuses are the statuses considered for capacity and overlap checks.
var ActiveStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusAccepted,
}

type ResponseAction string

const (
	ActionAccept     ResponseAction = "ACCEPT"
	ActionReject     ResponseAction = "REJECT"
	ActionReschedule ResponseAction = "RESCHEDULE"
)

type Appointment struct {
	Base
	PatientID      uuid.UUID         `db:"patient_id" json:"patient_id"`
	PatientEntryID uuid.UUID         `db:"patient_entry_id" json:"patient_entry_id"`
	DoctorID       uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date           time.Time         `db:"date" json:"date"`
	StartTime      string            `db:"start_time" json:"start_time"` // "HH:MM"
	EndTime        string            `db:"end_time" json:"end_time"`     // "HH:MM"
	Status         AppointmentStatus `db:"status" json:"status"`
	Fee            float64           `db:"fee" json:"fee"`
	Reason         string            `db:"reason" json:"reason,omitempty"`
	DoctorLocation string            `db:"doctor_location" json:"doctor_location,omitempty"`
}

type BookAppointmentRequest struct {
	PatientEntryID string `json:"patient_entry_id" validate:"required,uuid"`
	DoctorID       string `json:"doctor_id" validate:"required,uuid"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string `json:"start_time" validate:"required,hhmm"`
	EndTime        string `json:"end_time" validate:"required,hhmm"`
	Reason         string `json:"reason" validate:"max=500"`
}

type RespondAppointmentRequest struct {
	Action       string `json:"action" validate:"required"`
	NewDate      string `json:"new_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NewStartTime string `json:"new_start_time,omitempty" validate:"omitempty,hhmm"`
	NewEndTime   string `json:"new_end_time,omitempty" validate:"omitempty,hhmm"`
}
