package model

import (
	"github.com/google/uuid"
)

// Doctor is the directory entry consulted at booking time. Fee and City are
// snapshotted onto each appointment. Name is PHI and stored encrypted at rest.
type Doctor struct {
	Base
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Specialty string    `db:"specialty" json:"specialty,omitempty"`
	Email     string    `db:"email" json:"email"`
	Fee       float64   `db:"fee" json:"fee"`
	City      string    `db:"city" json:"city"`
}

type RegisterDoctorRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Specialty string  `json:"specialty" validate:"max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Fee       float64 `json:"fee" validate:"gte=0"`
	City      string  `json:"city" validate:"max=100"`
}
