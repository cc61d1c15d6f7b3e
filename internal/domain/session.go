package domain

import "time"

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone" validate:"omitempty,max=32"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// Session is what the vendor API returns after login or registration.
type Session struct {
	Token     string    `json:"token" yaml:"token"`
	ClientID  int64     `json:"client_id" yaml:"client_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
