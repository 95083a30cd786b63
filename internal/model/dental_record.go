package model

import "github.com/google/uuid"

type DentalRecord struct {
	Base
	ClinicID  uuid.UUID `json:"clinic" db:"clinic_id" validate:"required"`
	PatientID uuid.UUID `json:"patient" db:"patient_id" validate:"required"`
	Date      Date      `json:"date" db:"date"`
	Complaint string    `json:"complaint" db:"complaint" validate:"required,max=1000"`
	Diagnoses string    `json:"diagnoses" db:"diagnoses" validate:"required,max=1000"`
	Treatment string    `json:"treatment" db:"treatment" validate:"required,max=5000"`
}
