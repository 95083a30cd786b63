package model

import "github.com/google/uuid"

type Note struct {
	Base
	AccountID uuid.UUID `json:"account" db:"account_id" validate:"required"`
	Title     string    `json:"title" db:"title" validate:"required,max=255"`
	Body      string    `json:"body" db:"body" validate:"required"`
}

type Ad struct {
	Base
	AccountID uuid.UUID `json:"account" db:"account_id" validate:"required"`
	Image     string    `json:"image" db:"image" validate:"required,max=255"`
	ExpiresAt *Date     `json:"expires_at,omitempty" db:"expires_at"`
}

func (a *Ad) Clone() *Ad {
	c := *a
	c.ExpiresAt = clonePtr(a.ExpiresAt)
	return &c
}
