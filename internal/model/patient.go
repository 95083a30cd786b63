package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderOther  Gender = "other"
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type SocialStatus string

const (
	SocialStatusSingle   SocialStatus = "single"
	SocialStatusMarried  SocialStatus = "married"
	SocialStatusDivorced SocialStatus = "divorced"
	SocialStatusWidowed  SocialStatus = "widowed"
	SocialStatusEngaged  SocialStatus = "engaged"
)

type Patient struct {
	Base
	AccountID      uuid.UUID    `json:"account" db:"account_id" validate:"required"`
	FirstName      string       `json:"first_name" db:"first_name" validate:"required,max=50"`
	LastName       string       `json:"last_name" db:"last_name" validate:"required,max=50"`
	FatherName     string       `json:"father_name,omitempty" db:"father_name" validate:"max=50"`
	MotherName     string       `json:"mother_name,omitempty" db:"mother_name" validate:"max=50"`
	PhoneNumber    string       `json:"phonenumber" db:"phonenumber" validate:"required,e164"`
	Address        string       `json:"address,omitempty" db:"address" validate:"max=300"`
	Gender         Gender       `json:"gender,omitempty" db:"gender" validate:"omitempty,oneof=other male female"`
	SocialStatus   SocialStatus `json:"social_status,omitempty" db:"social_status" validate:"omitempty,oneof=single married divorced widowed engaged"`
	Birth          Date         `json:"birth" db:"birth" validate:"required"`
	GeneralHistory string       `json:"general_history,omitempty" db:"general_history" validate:"max=5000"`
	ClinicID       uuid.UUID    `json:"clinic" db:"clinic_id" validate:"required"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// AgeOn returns the completed years between the birth date and the calendar
// day of now. Someone born on 29 February turns a year older on 1 March in
// common years.
func (p *Patient) AgeOn(now time.Time) int {
	if p.Birth.IsZero() {
		return 0
	}
	today := DateOf(now)
	age := today.Year() - p.Birth.Year()
	if today.Month() < p.Birth.Month() || (today.Month() == p.Birth.Month() && today.Day() < p.Birth.Day()) {
		age--
	}
	return age
}

func (p Patient) MarshalJSON() ([]byte, error) {
	type patient Patient
	return json.Marshal(struct {
		patient
		FullName string `json:"full_name"`
		Age      int    `json:"age"`
	}{
		patient:  patient(p),
		FullName: p.FullName(),
		Age:      p.AgeOn(time.Now()),
	})
}
