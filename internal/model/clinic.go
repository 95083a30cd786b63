package model

type Clinic struct {
	Base
	Name    string `json:"name" db:"name" validate:"required,max=255"`
	Address string `json:"address" db:"address" validate:"required,max=255"`
	Image   string `json:"image,omitempty" db:"image" validate:"max=255"`
}
