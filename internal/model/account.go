package model

// Account is the authentication identity every owned record hangs off.
type Account struct {
	Base
	Username     string `json:"username" db:"username" validate:"required,min=3,max=150"`
	Password     string `json:"password,omitempty" db:"-" validate:"omitempty,min=8,max=128"`
	PasswordHash string `json:"-" db:"password_hash"`
	IsAdmin      bool   `json:"is_admin" db:"is_admin"`
}
