package model

import "github.com/google/uuid"

type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
)

type File struct {
	Base
	AppointmentID uuid.UUID `json:"appointment" db:"appointment_id" validate:"required"`
	Name          string    `json:"name" db:"name" validate:"required,max=255"`
	Type          FileType  `json:"type" db:"type" validate:"required,oneof=pdf image"`
	File          string    `json:"file" db:"file" validate:"required,max=255"`
}
