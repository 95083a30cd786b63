package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "pending"
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusRejected    AppointmentStatus = "rejected"
	AppointmentStatusCanceled    AppointmentStatus = "canceled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusMissed      AppointmentStatus = "missed"
)

// Appointment status is a flat label; any value may follow any other.
type Appointment struct {
	Base
	AccountID uuid.UUID         `json:"account" db:"account_id" validate:"required"`
	PatientID *uuid.UUID        `json:"patient,omitempty" db:"patient_id"`
	ClinicID  uuid.UUID         `json:"clinic" db:"clinic_id" validate:"required"`
	Date      time.Time         `json:"date" db:"date" validate:"required"`
	Status    AppointmentStatus `json:"status" db:"status" validate:"required,oneof=pending scheduled rejected canceled rescheduled completed missed"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

func (a *Appointment) Touch(now time.Time) {
	a.UpdatedAt = now
}

func (a *Appointment) Clone() *Appointment {
	c := *a
	c.PatientID = clonePtr(a.PatientID)
	return &c
}
